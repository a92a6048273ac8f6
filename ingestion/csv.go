// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/netsight/core"
)

// Column names of a LinkedIn connections export.
const (
	ColumnFirstName   = "First Name"
	ColumnLastName    = "Last Name"
	ColumnURL         = "URL"
	ColumnEmail       = "Email Address"
	ColumnCompany     = "Company"
	ColumnPosition    = "Position"
	ColumnConnectedOn = "Connected On"
)

const utf8BOM = "\ufeff"

// columns maps header names to field positions.
type columns map[string]int

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadConnectionsFile opens path and reads its connections.
func ReadConnectionsFile(path string) ([]core.Connection, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadConnections(f)
}

// ReadConnections parses a contacts export.
//
// Lines before the header row are skipped; LinkedIn prepends a "Notes:"
// preamble. Columns are mapped by name, so their order does not matter.
// Invalid rows are collected as RowErrors and do not stop the read.
func ReadConnections(r io.Reader) ([]core.Connection, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	cols, err := findHeader(reader)
	if err != nil {
		return nil, nil, err
	}

	var (
		connections []core.Connection
		rowErrors   []RowError
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrors = append(rowErrors, RowError{Line: parseErr.Line, Err: err})
				continue
			}
			return nil, nil, err
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		conn, err := parseConnection(cols, record)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Err: err})
			continue
		}
		conn.Line = line
		connections = append(connections, conn)
	}

	return connections, rowErrors, nil
}

// findHeader advances past the preamble and returns the header's column map.
func findHeader(reader *csv.Reader) (columns, error) {
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrHeaderNotFound
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}

		cols := make(columns, len(record))
		for i, name := range record {
			name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
			cols[name] = i
		}
		_, hasFirst := cols[ColumnFirstName]
		_, hasLast := cols[ColumnLastName]
		if hasFirst && hasLast {
			return cols, nil
		}
	}
}

func parseConnection(cols columns, record []string) (core.Connection, error) {
	first := cols.get(record, ColumnFirstName)
	last := cols.get(record, ColumnLastName)

	connectedOn, err := core.ParseConnectedOn(cols.get(record, ColumnConnectedOn))
	if err != nil {
		return core.Connection{}, err
	}

	conn := core.Connection{
		FirstName:   first,
		LastName:    last,
		FullName:    strings.Join(strings.Fields(first+" "+last), " "),
		Company:     cols.get(record, ColumnCompany),
		Position:    cols.get(record, ColumnPosition),
		Email:       cols.get(record, ColumnEmail),
		ProfileURL:  cols.get(record, ColumnURL),
		ConnectedOn: connectedOn,
	}
	if err := core.ValidateConnection(&conn); err != nil {
		return core.Connection{}, fmt.Errorf("%s: %w", conn.FullName, err)
	}
	return conn, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
