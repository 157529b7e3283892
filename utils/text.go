package utils

// ChunkString splits a string into chunks of a maximum size, safely handling runes.
func ChunkString(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}
	if len(s) <= chunkSize {
		return []string{s}
	}
	var chunks []string
	runes := []rune(s)

	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
