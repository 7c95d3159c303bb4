// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package blog

import "errors"

// ErrNotFound indicates the requested post does not exist.
var ErrNotFound = errors.New("not found")
