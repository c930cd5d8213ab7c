package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "spallflow",
		Short: "Extract spall experiment records from scientific-paper page images",
	}

	root.AddCommand(runCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(startCmd())
	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
