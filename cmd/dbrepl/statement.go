package main

import (
	"strconv"
	"strings"

	"btreedb/column"
	"btreedb/table"
)

type statementType int

const (
	statementInsert statementType = iota
	statementSelect
)

type prepareResult int

const (
	prepareSuccess prepareResult = iota
	prepareNegativeID
	prepareStringTooLong
	prepareSyntaxError
	prepareUnrecognizedStatement
)

type statement struct {
	typ         statementType
	rowToInsert table.Row
}

// prepareStatement classifies a non-meta input line into an insert or a
// select, mirroring the source's prepare_statement/prepare_insert: insert
// takes exactly three whitespace-separated arguments (id, username,
// email), in that order, with no quoting.
func prepareStatement(line string, stmt *statement) prepareResult {
	if strings.HasPrefix(line, "insert") {
		return prepareInsert(line, stmt)
	}
	if line == "select" {
		stmt.typ = statementSelect
		return prepareSuccess
	}
	return prepareUnrecognizedStatement
}

func prepareInsert(line string, stmt *statement) prepareResult {
	stmt.typ = statementInsert

	fields := strings.Fields(line)
	if len(fields) != 4 {
		return prepareSyntaxError
	}
	idField, username, email := fields[1], fields[2], fields[3]

	id, err := strconv.Atoi(idField)
	if err != nil || id < 0 {
		return prepareNegativeID
	}
	if len(username) > column.UsernameMaxLen {
		return prepareStringTooLong
	}
	if len(email) > column.EmailMaxLen {
		return prepareStringTooLong
	}

	stmt.rowToInsert = table.Row{ID: uint32(id), Username: username, Email: email}
	return prepareSuccess
}
