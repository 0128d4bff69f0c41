// Package llm provides a minimal text-generation client used by the
// llm_reasoning and llm_summary exploration tools.
//
// It wraps gollm behind the Generator interface so agents and tests can
// substitute a stub. Provider errors are classified into retryable and
// non-retryable categories, and Generate calls run under a configurable
// retry policy with exponential backoff.
package llm
