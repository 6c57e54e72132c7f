// Package harness runs scripted bookstore sessions as conformance tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - input: su root sjtu
//	    expect: ""
//	  - input: select 978-1
//	  - input: import 5 10.00
//	  - restart: true
//	  - input: buy 978-1 2
//	    expect: |
//	      Invalid
//	assertions:
//	  - type: book
//	    isbn: 978-1
//	    expect: { quantity: 5, price: 0 }
//	  - type: trade_count
//	    count: 1
//
// A step's expect is the exact output of the command. Any rejected command
// prints "Invalid". A restart step closes the data files and opens them again
// with a fresh session stack, which checks that state survives the process.
//
// # Assertion Types
//
//   - book: the record at isbn has the given field values (prices in minor units)
//   - book_absent: no record exists at isbn
//   - trade_count: number of records in the trade ledger
//   - command_count: number of records in the command ledger
//   - totals: income and expense over the whole trade ledger, as decimals
//
// # Determinism
//
// Each scenario gets a fresh temporary data directory, the default root
// account, bcrypt's minimum cost and sequential session IDs, so the same
// scenario always produces the same transcript. RunWithGolden compares that
// transcript with testdata/golden/<name>.golden.
package harness
