// Package model provides the record types shared by the bookstore packages.
//
// This package contains types and validation only. All other internal packages
// import model; model imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - prices are int64 minor units
//   - Every field bound is checked by a Validate* function before it reaches a store
//   - All JSON tags use snake_case
//   - Errors carry a Code so the dispatcher can reject uniformly
package model
