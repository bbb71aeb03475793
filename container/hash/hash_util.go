package hash

import (
	"github.com/spaolacci/murmur3"

	"github.com/ymakino/TsubameDB/types"
)

// HashValue buckets a value by hashing its serialized form. Callers
// must re-check equality on the raw values, hashes can collide.
func HashValue(v types.Value) uint32 {
	h := murmur3.New32()
	h.Write(v.Serialize())
	return h.Sum32()
}
