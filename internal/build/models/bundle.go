package models

import (
	"fmt"
	"sort"
)

// ChunkType distinguishes code chunks from static assets.
type ChunkType string

const (
	ChunkTypeChunk ChunkType = "chunk"
	ChunkTypeAsset ChunkType = "asset"
)

// Chunk is one file emitted by the bundler.
type Chunk struct {
	// FileName is the slash-separated path relative to the target output directory.
	FileName string
	Type     ChunkType
	// FacadeModuleID is the absolute path of the source module this chunk stands for.
	// Empty for assets.
	FacadeModuleID string
	IsEntry        bool
	Code           []byte
	Meta           map[string]string
}

// Bundle is the set of chunks produced for one target.
type Bundle struct {
	Target Target
	chunks map[string]*Chunk
}

// NewBundle creates an empty bundle for target.
func NewBundle(target Target) *Bundle {
	return &Bundle{Target: target, chunks: make(map[string]*Chunk)}
}

// Add inserts c. File names must be unique within a bundle.
func (b *Bundle) Add(c *Chunk) error {
	if c == nil || c.FileName == "" {
		return fmt.Errorf("chunk file name is required")
	}
	if _, exists := b.chunks[c.FileName]; exists {
		return fmt.Errorf("duplicate chunk %s in %s bundle", c.FileName, b.Target)
	}
	b.chunks[c.FileName] = c
	return nil
}

// Get returns the chunk named fileName.
func (b *Bundle) Get(fileName string) (*Chunk, bool) {
	c, ok := b.chunks[fileName]
	return c, ok
}

// Remove drops the chunk named fileName.
func (b *Bundle) Remove(fileName string) {
	delete(b.chunks, fileName)
}

// Chunks returns all chunks sorted by file name.
func (b *Bundle) Chunks() []*Chunk {
	if b == nil {
		return nil
	}
	out := make([]*Chunk, 0, len(b.chunks))
	for _, c := range b.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out
}

// Len returns the number of chunks.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.chunks)
}
