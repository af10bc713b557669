// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrConnection marks transport failures: the request never produced
	// a usable HTTP response, or the server answered with a non-2xx status.
	ErrConnection = errors.New("connection error")

	// ErrRetrieval marks a malformed or unexpected response, and wraps any
	// failure that aborted a paginated search or fetch.
	ErrRetrieval = errors.New("retrieval error")

	// ErrParse marks a record fragment that matches no known shape or
	// lacks a required field.
	ErrParse = errors.New("parse error")

	// ErrNotConnected is returned when a request would be sent with the
	// placeholder identification.
	ErrNotConnected = errors.New("client identification not configured: call Connect first")
)

// ConnectionError describes a failed HTTP exchange with E-utilities.
type ConnectionError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned HTTP %d", ErrConnection, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", ErrConnection, e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// RetrievalError aborts a search or fetch. Chunk is the zero-based page
// or chunk index that failed, or -1 for the count request.
type RetrievalError struct {
	Op    string
	Chunk int
	IDs   []string
	Err   error
}

func (e *RetrievalError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRetrieval.Error())
	b.WriteString(": ")
	b.WriteString(e.Op)
	if e.Chunk >= 0 {
		fmt.Fprintf(&b, " chunk %d", e.Chunk)
	}
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " (ids %s)", summarizeIDs(e.IDs))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RetrievalError) Unwrap() error { return e.Err }

func (e *RetrievalError) Is(target error) bool { return target == ErrRetrieval }

// ParseError describes a record fragment that could not be turned into a
// CitationRecord.
type ParseError struct {
	Element string
	PMID    string
	Reason  string
}

func (e *ParseError) Error() string {
	msg := ErrParse.Error()
	if e.Element != "" {
		msg += fmt.Sprintf(": <%s>", e.Element)
	}
	if e.PMID != "" {
		msg += " pmid " + e.PMID
	}
	return msg + ": " + e.Reason
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// summarizeIDs keeps error messages readable for thousand-id chunks.
func summarizeIDs(ids []string) string {
	const limit = 5
	if len(ids) <= limit {
		return strings.Join(ids, ",")
	}
	return fmt.Sprintf("%s,... %d more", strings.Join(ids[:limit], ","), len(ids)-limit)
}
