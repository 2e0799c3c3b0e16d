package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/groupweave/weave-go/model/group"
)

const (
	// codeGroup indexes group records by internal id.
	codeGroup = 1

	// codeInnerChat indexes inner-chat records by (internal id, user id).
	codeInnerChat = 2

	// codeIndexExternalID maps a provider-wide external id to an internal id.
	codeIndexExternalID = 10

	// codeIndexChannel maps a secure channel handle to the internal id of
	// the group owning the bound inner chat.
	codeIndexChannel = 11
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, keyPartToBinary(key)...)
	}
	return prefix
}

func keyPartToBinary(v interface{}) []byte {
	switch i := v.(type) {
	case group.InternalID:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(i))
		return b
	case group.ChannelID:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(i))
		return b
	case group.UserID:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(i))
		return b
	case group.ExternalID:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(i))
		return b
	default:
		panic(fmt.Sprintf("unsupported key part type (%T)", v))
	}
}
