package main

import (
	"fmt"
	"os"

	"btreedb/table"
)

type metaCommandResult int

const (
	metaCommandSuccess metaCommandResult = iota
	metaCommandUnrecognizedCommand
)

// doMetaCommand handles a leading-dot command. .exit closes the table and
// terminates the process directly, matching the source's do_meta_command.
func doMetaCommand(line string, tbl *table.Table) metaCommandResult {
	switch line {
	case ".exit":
		if err := tbl.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	case ".btree":
		fmt.Println("Tree:")
		if err := tbl.PrintTree(os.Stdout, 0, 0); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return metaCommandSuccess
	case ".constants":
		fmt.Println("Constants:")
		table.PrintConstants(os.Stdout)
		return metaCommandSuccess
	}
	return metaCommandUnrecognizedCommand
}
