// Package models defines the core domain models for the trip ledger.
//
// # Models
//
//   - Person: a trip member participating in the shared ledger
//   - Expense: a cost fronted by one member, owed back via Splits
//   - SettlementRecord: a real-world payment tracked through
//     pending/completed/declined states
//
// Monetary amounts use decimal.Decimal throughout. Balances are derived,
// never stored: the calculator package recomputes them from the expense
// and settlement lists on every read.
//
// # Design Principles
//
//  1. People are referenced by a single canonical ID string everywhere;
//     the storage boundary establishes it and nothing downstream guesses
//     field names.
//  2. Avoid circular references: models hold ID strings, not pointers.
//  3. Derived values (balances, suggested transfers) never appear here.
package models
