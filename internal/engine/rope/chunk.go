package rope

// Chunk size bounds. Chunks never split a UTF-8 sequence.
const (
	MinChunkSize    = 128
	MaxChunkSize    = 256
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// Chunk is an immutable piece of text stored in a leaf.
type Chunk struct {
	text    string
	summary TextSummary
}

// NewChunk creates a chunk and measures it.
func NewChunk(s string) Chunk {
	return Chunk{text: s, summary: ComputeSummary(s)}
}

// String returns the chunk text.
func (c Chunk) String() string { return c.text }

// Summary returns the cached metrics.
func (c Chunk) Summary() TextSummary { return c.summary }

// Len returns the byte length.
func (c Chunk) Len() int { return len(c.text) }

// Split divides the chunk at a byte offset that must be a character boundary.
func (c Chunk) Split(at int) (Chunk, Chunk) {
	switch {
	case at <= 0:
		return Chunk{}, c
	case at >= len(c.text):
		return c, Chunk{}
	}
	return NewChunk(c.text[:at]), NewChunk(c.text[at:])
}

// chunkText cuts s into chunks of roughly TargetChunkSize bytes,
// preferring to end a chunk just after a newline.
func chunkText(s string) []Chunk {
	if s == "" {
		return nil
	}
	var out []Chunk
	for len(s) > MaxChunkSize {
		cut := cutPoint(s, TargetChunkSize)
		out = append(out, NewChunk(s[:cut]))
		s = s[cut:]
	}
	return append(out, NewChunk(s))
}

// cutPoint picks a split position near target.
func cutPoint(s string, target int) int {
	window := MinChunkSize / 4
	for i := target; i < target+window && i < len(s); i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= target-window && i > 0; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}
	at := target
	for at > 0 && !isCharStart(s[at]) {
		at--
	}
	if at == 0 {
		at = target
		for at < len(s) && !isCharStart(s[at]) {
			at++
		}
	}
	return at
}
