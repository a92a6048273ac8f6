// Package mock provides test doubles for the ai services.
//
//	provider := mock.NewMockProvider()
//	embedder := provider.(*mock.MockProvider).GetMockEmbedder()
//
//	summarizer := mock.NewMockSummarizer()
//	summarizer.SummarizeFunc = func(ctx context.Context, query string, candidates []ai.Candidate) (string, error) {
//	    return "", errors.New("model offline")
//	}
//
// Defaults:
//
//   - MockEmbedder: vectors derived from a hash of the text, see DeterministicVector
//   - MockSummarizer: a summary naming the candidate count; LastCandidates returns what it saw
//   - MockFilterExtractor: extracts nothing
//
// Every double counts its calls (CallCount) and can be cleared with Reset.
package mock
