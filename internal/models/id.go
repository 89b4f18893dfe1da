package models

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idMu   sync.Mutex
	idMono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	idMono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewID returns a ULID string (time-sortable identifier). Orders, positions,
// history entries and alerts all share this id space.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), idMono)
	if err != nil {
		// Only possible if time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}
