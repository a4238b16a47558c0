// Command dbrepl is the interactive front end for the storage engine: a
// read-prepare-execute-print loop over a single database file, in the
// style of the source's main().
package main

import (
	"bufio"
	"fmt"
	"os"

	"btreedb/pager"
	"btreedb/table"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

	tbl, err := table.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		printPrompt()
		line, err := readInput(reader)
		if err != nil {
			return
		}

		if len(line) > 0 && line[0] == '.' {
			switch doMetaCommand(line, tbl) {
			case metaCommandSuccess:
				continue
			case metaCommandUnrecognizedCommand:
				fmt.Printf("Unrecognized command '%s'\n", line)
				continue
			}
		}

		var stmt statement
		switch prepareStatement(line, &stmt) {
		case prepareSuccess:
		case prepareNegativeID:
			fmt.Println("ID must be positive.")
			continue
		case prepareStringTooLong:
			fmt.Println("String is too long.")
			continue
		case prepareSyntaxError:
			fmt.Println("Syntax error. Could not parse statement.")
			continue
		case prepareUnrecognizedStatement:
			fmt.Printf("Unrecognized keyword at start of '%s'.\n", line)
			continue
		}

		executeStatement(tbl, &stmt)
	}
}

func executeStatement(tbl *table.Table, stmt *statement) {
	switch stmt.typ {
	case statementInsert:
		res, err := tbl.Insert(stmt.rowToInsert)
		if err != nil {
			reportError(err)
			return
		}
		switch res {
		case table.InsertSuccess:
			fmt.Println("Executed.")
		case table.InsertDuplicateKey:
			fmt.Println("Error: Duplicate key.")
		case table.InsertTableFull:
			fmt.Println("Error: Table full.")
		}

	case statementSelect:
		err := tbl.SelectAll(func(r table.Row) error {
			fmt.Printf("(%d, %s, %s)\n", r.ID, r.Username, r.Email)
			return nil
		})
		if err != nil {
			reportError(err)
			return
		}
		fmt.Println("Executed.")
	}
}

// reportError prints err and terminates the process if it is fatal (a
// corrupt file or an I/O failure the engine cannot recover from); a
// non-fatal error is reported and the REPL loop continues.
func reportError(err error) {
	fmt.Fprintln(os.Stderr, err)
	if pager.IsFatal(err) {
		os.Exit(1)
	}
}
