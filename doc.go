// Package tickker computes portfolio performance from brokerage transaction
// histories and compares it to a benchmark.
//
// The core functionalities include:
//   - Ledger: dated buy, sell, dividend, interest and reinvest transactions,
//     kept in chronological order and read from JSONL.
//   - Positions: a stateless replay of the ledger gives the shares held on any
//     day. Oversold positions are clamped to zero and reported.
//   - Valuation: positions times the latest known closing price, never a
//     future one, on every trading day.
//   - Comparison: portfolio, benchmark and custom symbols rebased to the same
//     amount (growth of $10,000) on a baseline date.
//   - Returns: time-weighted return chain-linked over cash-flow sub-periods,
//     contribution-adjusted net return, deposit-averaged return and trailing
//     metrics against the benchmark.
//   - Weekly leaderboard: group members ranked by weekly return, with badges.
//
// Recoverable issues (missing prices, upstream timeouts, ledger anomalies)
// never fail a computation: they are reported as warnings and flag the result
// as degraded.
package tickker
