// Package openai implements the ai interfaces against OpenAI-compatible HTTP APIs
// (OpenAI, Ollama, LocalAI, vLLM) using langchaingo.
//
// Embeddings go to the configured embedding host. Summaries and filter
// extraction share a single chat client on the chat host.
package openai
