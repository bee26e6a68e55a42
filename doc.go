// Package taxlots computes realized and unrealized capital gains for the sales
// of a single security, under several lot selection policies ("tax methods").
//
// The core functionalities include:
//   - Lot Pool: the open remainders of prior purchases, each with its size,
//     unit cost basis and acquisition time.
//   - Tax Methods: FIFO, LIFO, high cost, low cost and a tax optimizer, each
//     defining which open lot is sold first for a given sale.
//   - Accountant: replays transactions under one method, splitting partially
//     sold lots and booking gains as short-term or long-term (held for more
//     than 365 days).
//   - Gains Report: runs every method over the same transactions, values the
//     open lots at a mark price and estimates the tax burden.
//
// Amounts are exact decimals, so the lot ordering and the gain totals do not
// depend on floating point rounding.
//
// This package serves as the foundational logic for the `taxer` command-line
// tool.
package taxlots
