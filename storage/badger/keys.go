package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/netsight/core"
)

// Key prefixes for different data types
const (
	personPrefix     = "person:"
	personDatePrefix = "persondate:"
	companyPrefix    = "company:"
	worksAtPrefix    = "worksat:"
	embeddingPrefix  = "embedding:"
	manifestKey      = "manifest"
)

// graphPrefixes are dropped together when the graph is reset.
var graphPrefixes = []string{personPrefix, personDatePrefix, companyPrefix, worksAtPrefix}

// appendUint64 writes v in BigEndian order so lexicographic sort matches numeric order.
func appendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

// makeIDKey generates prefix + big-endian id.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, 0, len(prefix)+8)
	buf = append(buf, prefix...)
	return appendUint64(buf, uint64(id))
}

// makePersonKey generates a key for a person by ID.
// IDs are big-endian so that ListPeople pages in ID order.
func makePersonKey(id core.ID) []byte {
	return makeIDKey(personPrefix, id)
}

// idFromPersonKey extracts the ID from a person key.
func idFromPersonKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(personPrefix):]))
}

// makeCompanyKey generates a key for a company by ID.
func makeCompanyKey(id core.ID) []byte {
	return makeIDKey(companyPrefix, id)
}

// makeEmbeddingKey generates a key for a person's embedding.
func makeEmbeddingKey(id core.ID) []byte {
	return makeIDKey(embeddingPrefix, id)
}

// makeWorksAtKey generates a composite key for the WORKS_AT edge index.
// Format: prefix:companyID:personID
func makeWorksAtKey(companyID, personID core.ID) []byte {
	buf := make([]byte, 0, len(worksAtPrefix)+16)
	buf = append(buf, worksAtPrefix...)
	buf = appendUint64(buf, uint64(companyID))
	return appendUint64(buf, uint64(personID))
}

// makePartialWorksAtKey generates a partial key for scanning a company's employees.
// Format: prefix:companyID
func makePartialWorksAtKey(companyID core.ID) []byte {
	return makeIDKey(worksAtPrefix, companyID)
}

// makePersonDateKey generates a composite key for the connection-date index.
// Format: prefix:unixMicro:personID
func makePersonDateKey(connectedOn time.Time, id core.ID) []byte {
	buf := makePartialPersonDateKey(connectedOn)
	return appendUint64(buf, uint64(id))
}

// makePartialPersonDateKey generates a partial key for date range scans.
// Format: prefix:unixMicro
func makePartialPersonDateKey(ts time.Time) []byte {
	buf := make([]byte, 0, len(personDatePrefix)+16)
	buf = append(buf, personDatePrefix...)
	return appendUint64(buf, uint64(ts.UnixMicro()))
}
