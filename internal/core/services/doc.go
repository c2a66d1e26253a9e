// Package services holds the retrieval core: the embedding resolver,
// the document index, the ingestion scanner and the scheduler that keeps
// the index in step with the data directory.
//
// Services depend only on domain types and port interfaces.
package services
