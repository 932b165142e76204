// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package util

import (
	"errors"
	"fmt"
	"strings"
)

// Errs accumulates zero or more errors and joins them into one when
// asked. Used by operations that must attempt several independent
// sub-steps (e.g. refreshing every file in a trust-anchor directory)
// without letting one failure abort the others.
type Errs struct {
	errs []error
}

// Add appends err if non-nil.
func (e *Errs) Add(err error) {
	if err != nil {
		e.errs = append(e.errs, err)
	}
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	return len(e.errs) > 0
}

// Len returns the number of accumulated errors.
func (e *Errs) Len() int {
	return len(e.errs)
}

// Err returns nil, the single error, or a combined error describing all
// of them.
func (e *Errs) Err() error {
	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.New(e.String())
	}
}

// String renders all accumulated errors, one per line.
func (e *Errs) String() string {
	if len(e.errs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error", len(e.errs)))
	if len(e.errs) != 1 {
		sb.WriteByte('s')
	}
	sb.WriteString(" occurred:")
	for _, err := range e.errs {
		sb.WriteString("\n\t* ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
