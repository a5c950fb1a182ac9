// Package llm talks to hosted language models for document analysis. It
// supports OpenAI, Anthropic and a generic JSON endpoint behind one Client
// interface, with client-side rate limiting.
package llm
