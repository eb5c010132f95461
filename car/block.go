package car

import (
	"fmt"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
)

// Block is a pair (CID, bytes). It satisfies blocks.Block so callers
// already using go-ipfs-blockstore-shaped code can treat it as one.
type Block struct {
	cid  cid.Cid
	data []byte
}

var _ blocks.Block = Block{}

// NewBlockWithCid wraps data with an already-known CID, the way
// go-block-format's NewBlockWithCid does, without re-hashing: the
// caller is responsible for providing a correct (CID, data) pair.
func NewBlockWithCid(c cid.Cid, data []byte) Block {
	return Block{cid: c, data: data}
}

func (b Block) Cid() cid.Cid    { return b.cid }
func (b Block) RawData() []byte { return b.data }
func (b Block) String() string  { return fmt.Sprintf("[Block %s]", b.cid) }

func (b Block) Loggable() map[string]interface{} {
	return map[string]interface{}{"block": b.cid.String()}
}
