package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matt-FFFFFF/plumb"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Count the words arriving on the pipe.
	count := plumb.New("tr").MustBind("a-z", "A-Z").
		Pipe(plumb.New("wc").MustBind("-w")).
		InputString("one two three\n")

	fmt.Println("running:", count)

	res, err := count.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pipeline failed:", err)
		os.Exit(1)
	}

	fmt.Print("word count: ", res.StdoutString())

	// A failing stage: grep exits 1 when nothing matches, which is
	// acceptable here.
	search := plumb.New("grep").MustBind("-c", "needle").
		AllowExitCodes(1).
		InputString("no matches in this haystack\n")

	res, err = search.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pipeline failed:", err)
		os.Exit(1)
	}

	fmt.Println("\n=== Full Output (includes stdout) ===")

	opts := plumb.DefaultOutputOptions()
	opts.IncludeStdOut = true
	opts.ShowSuccessDetails = true

	res.WriteText(os.Stdout, opts) //nolint:errcheck
}
