package unixfs

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/blocklessnetwork/car-utils/car"
)

const (
	pbTRaw = iota
	pbTDirectory
	pbTFile
	pbTMetadata
	pbTSymlink
	pbTHAMTShard
)

// Reference:
//
//	message Data {
//		enum DataType {
//			Raw = 0;
//			Directory = 1;
//			File = 2;
//			Metadata = 3;
//			Symlink = 4;
//			HAMTShard = 5;
//		}
//
//		required DataType Type = 1;
//		optional bytes Data = 2;
//		optional uint64 filesize = 3;
//		repeated uint64 blocksizes = 4;
//	}
//
//	message PBLink {
//		optional bytes Hash = 1;
//		optional string Name = 2;
//		optional uint64 Tsize = 3;
//	}
//
//	message PBNode {
//		optional Data Data = 1;
//		repeated PBLink Links = 2;
//	}
//
// On the wire, links are written before the Data field, matching the
// byte order the reference go-merkledag encoder has always produced,
// even though Data is message field number 1.

type pbLink struct {
	hash    []byte
	name    []byte
	hasName bool
	tsize   uint64
}

type pbData struct {
	typ        uint64
	data       []byte
	filesize   uint64
	hasSize    bool
	blocksizes []uint64
}

// decodePBNode splits a raw PBNode message into its Data payload and
// its ordered Links, without looking inside the Data payload.
func decodePBNode(msg []byte) (data []byte, links []pbLink, err error) {
	for len(msg) != 0 {
		num, t, l := protowire.ConsumeTag(msg)
		if l < 0 {
			return nil, nil, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
		}
		msg = msg[l:]

		switch num {
		case 1: // optional Data Data = 1;
			if t != protowire.BytesType {
				return nil, nil, fmt.Errorf("%w: unexpected type for PBNode.Data", car.ErrInvalidProtobuf)
			}
			v, l := protowire.ConsumeBytes(msg)
			if l < 0 {
				return nil, nil, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
			}
			msg = msg[l:]
			data = v

		case 2: // repeated PBLink Links = 2;
			if t != protowire.BytesType {
				return nil, nil, fmt.Errorf("%w: unexpected type for PBNode.Links", car.ErrInvalidProtobuf)
			}
			linkMsg, l := protowire.ConsumeBytes(msg)
			if l < 0 {
				return nil, nil, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
			}
			msg = msg[l:]

			link, err := decodePBLink(linkMsg)
			if err != nil {
				return nil, nil, err
			}
			links = append(links, link)

		default:
			msg, err = pbSkipUnknownField(t, msg)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return data, links, nil
}

func decodePBLink(msg []byte) (pbLink, error) {
	var link pbLink
	for len(msg) != 0 {
		num, t, l := protowire.ConsumeTag(msg)
		if l < 0 {
			return pbLink{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
		}
		msg = msg[l:]

		switch num {
		case 1: // optional bytes Hash = 1;
			v, l := protowire.ConsumeBytes(msg)
			if l < 0 {
				return pbLink{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
			}
			msg = msg[l:]
			link.hash = v

		case 2: // optional string Name = 2;
			v, l := protowire.ConsumeBytes(msg)
			if l < 0 {
				return pbLink{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
			}
			msg = msg[l:]
			link.name = v
			link.hasName = true

		case 3: // optional uint64 Tsize = 3;
			var v uint64
			var err error
			msg, v, err = pbDecodeNumber(t, msg)
			if err != nil {
				return pbLink{}, err
			}
			link.tsize = v

		default:
			var err error
			msg, err = pbSkipUnknownField(t, msg)
			if err != nil {
				return pbLink{}, err
			}
		}
	}
	return link, nil
}

func decodePBData(msg []byte) (pbData, error) {
	var d pbData
	for len(msg) != 0 {
		num, t, l := protowire.ConsumeTag(msg)
		if l < 0 {
			return pbData{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
		}
		msg = msg[l:]

		switch num {
		case 1: // required DataType Type = 1;
			var v uint64
			var err error
			msg, v, err = pbDecodeNumber(t, msg)
			if err != nil {
				return pbData{}, err
			}
			d.typ = v

		case 2: // optional bytes Data = 2;
			if t != protowire.BytesType {
				return pbData{}, fmt.Errorf("%w: unexpected type for Data.Data", car.ErrInvalidProtobuf)
			}
			v, l := protowire.ConsumeBytes(msg)
			if l < 0 {
				return pbData{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
			}
			msg = msg[l:]
			d.data = v

		case 3: // optional uint64 filesize = 3;
			var v uint64
			var err error
			msg, v, err = pbDecodeNumber(t, msg)
			if err != nil {
				return pbData{}, err
			}
			d.filesize = v
			d.hasSize = true

		case 4: // repeated uint64 blocksizes = 4;
			switch t {
			case protowire.VarintType, protowire.Fixed64Type, protowire.Fixed32Type:
				var v uint64
				var err error
				msg, v, err = pbDecodeNumber(t, msg)
				if err != nil {
					return pbData{}, err
				}
				d.blocksizes = append(d.blocksizes, v)

			case protowire.BytesType:
				packed, l := protowire.ConsumeBytes(msg)
				if l < 0 {
					return pbData{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
				}
				msg = msg[l:]
				for len(packed) != 0 {
					v, l := protowire.ConsumeVarint(packed)
					if l < 0 {
						return pbData{}, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
					}
					packed = packed[l:]
					d.blocksizes = append(d.blocksizes, v)
				}

			default:
				return pbData{}, fmt.Errorf("%w: unexpected type for Data.blocksizes", car.ErrInvalidProtobuf)
			}

		default:
			var err error
			msg, err = pbSkipUnknownField(t, msg)
			if err != nil {
				return pbData{}, err
			}
		}
	}
	return d, nil
}

// parsePB decodes a DAG-PB-wrapped UnixFS node into the Node it
// represents.
func parsePB(c cid.Cid, raw []byte) (Node, error) {
	nodeData, links, err := decodePBNode(raw)
	if err != nil {
		return nil, err
	}

	d, err := decodePBData(nodeData)
	if err != nil {
		return nil, err
	}

	selfTSize := uint64(len(raw)) + 1
	for _, l := range links {
		if l.tsize != 0 {
			selfTSize += l.tsize
		}
	}

	switch d.typ {
	case pbTRaw:
		if len(links) != 0 {
			return nil, fmt.Errorf("%w: links on raw leaf", car.ErrInvalidProtobuf)
		}
		return File{
			Entry:    Entry{Cid: c, tSize: selfTSize},
			Data:     d.data,
			FileSize: uint64(len(d.data)),
		}, nil

	case pbTFile:
		if len(d.blocksizes) != len(links) {
			return nil, fmt.Errorf("%w: unmatched links (%d) and blocksizes (%d)", car.ErrInvalidProtobuf, len(links), len(d.blocksizes))
		}
		childrens := make([]FileEntry, len(links))
		for i, l := range links {
			if l.hasName && len(l.name) != 0 {
				return nil, fmt.Errorf("%w: named link in file", car.ErrInvalidProtobuf)
			}
			childCid, err := cid.Cast(l.hash)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, err)
			}
			childrens[i] = FileEntry{
				Entry:    Entry{Cid: childCid, tSize: tsizeOffset(l.tsize)},
				FileSize: d.blocksizes[i],
			}
		}
		filesize := d.filesize
		if !d.hasSize {
			for _, ch := range childrens {
				filesize += ch.FileSize
			}
		}
		return File{
			Entry:     Entry{Cid: c, tSize: selfTSize},
			Data:      d.data,
			FileSize:  filesize,
			Childrens: childrens,
		}, nil

	case pbTDirectory:
		childrens := make([]DirectoryEntry, len(links))
		for i, l := range links {
			childCid, err := cid.Cast(l.hash)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, err)
			}
			childrens[i] = DirectoryEntry{
				Entry: Entry{Cid: childCid, tSize: tsizeOffset(l.tsize)},
				Name:  string(l.name),
			}
		}
		return Directory{
			Entry:     Entry{Cid: c, tSize: selfTSize},
			Childrens: childrens,
		}, nil

	case pbTSymlink:
		if len(links) != 0 {
			return nil, fmt.Errorf("%w: links on symlink", car.ErrInvalidProtobuf)
		}
		return Symlink{
			Entry:  Entry{Cid: c, tSize: selfTSize},
			Target: d.data,
		}, nil

	case pbTMetadata, pbTHAMTShard:
		return nil, car.ErrUnsupportedNodeType

	default:
		return nil, fmt.Errorf("%w: unknown unixfs data type %d", car.ErrInvalidProtobuf, d.typ)
	}
}

func tsizeOffset(tsize uint64) uint64 {
	if tsize == 0 {
		return 0
	}
	return tsize + 1
}

func pbSkipUnknownField(t protowire.Type, data []byte) ([]byte, error) {
	var l int
	switch t {
	case protowire.BytesType:
		_, l = protowire.ConsumeBytes(data)
	case protowire.VarintType:
		_, l = protowire.ConsumeVarint(data)
	case protowire.Fixed64Type:
		_, l = protowire.ConsumeFixed64(data)
	case protowire.Fixed32Type:
		_, l = protowire.ConsumeFixed32(data)
	default:
		return nil, fmt.Errorf("%w: unknown protobuf type %v", car.ErrInvalidProtobuf, t)
	}
	if l < 0 {
		return nil, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
	}
	return data[l:], nil
}

// pbDecodeNumber decodes a uint64 as best as it can, accepting any of
// the wire types a protobuf encoder might have used for it.
func pbDecodeNumber(typ protowire.Type, data []byte) ([]byte, uint64, error) {
	var v uint64
	var l int
	switch typ {
	case protowire.VarintType:
		v, l = protowire.ConsumeVarint(data)
	case protowire.Fixed64Type:
		v, l = protowire.ConsumeFixed64(data)
	case protowire.Fixed32Type:
		var v32 uint32
		v32, l = protowire.ConsumeFixed32(data)
		v = uint64(v32)
	default:
		return nil, 0, fmt.Errorf("%w: unexpected type for number %v", car.ErrInvalidProtobuf, typ)
	}
	if l < 0 {
		return nil, 0, fmt.Errorf("%w: %v", car.ErrInvalidProtobuf, protowire.ParseError(l))
	}
	return data[l:], v, nil
}

var errLinkMissingHash = errors.New("unixfs: link is missing a hash")

// EncodeRawLeaf renders a chunk of file content as a DAG-PB-wrapped
// UnixFS Raw leaf: a Data message with Type=Raw and no links, the
// chunking unit the packer hashes to produce each leaf CID.
func EncodeRawLeaf(data []byte) []byte {
	pbd := appendPBData(nil, pbTRaw, data, nil, nil)
	return appendPBNode(nil, pbd)
}

// EncodeFile renders a File's DAG-PB wire bytes: a Data message with
// Type=File, its inline Data, the total filesize, and one blocksize per
// child, followed by the child links themselves (unnamed, since a
// file's children are positional chunks, not named entries).
func EncodeFile(data []byte, childrens []FileEntry) ([]byte, error) {
	blocksizes := make([]uint64, len(childrens))
	var filesize uint64
	for i, c := range childrens {
		blocksizes[i] = c.FileSize
		filesize += c.FileSize
	}
	filesize += uint64(len(data))

	pbd := appendPBData(nil, pbTFile, data, &filesize, blocksizes)

	var links []byte
	for _, c := range childrens {
		tsize, _ := c.TSize()
		linkBytes, err := encodePBLink(c.Cid, "", tsize)
		if err != nil {
			return nil, err
		}
		links = protowire.AppendTag(links, 2, protowire.BytesType)
		links = protowire.AppendBytes(links, linkBytes)
	}

	return appendPBNode(links, pbd), nil
}

// EncodeDirectory renders a Directory's DAG-PB wire bytes: a minimal
// Data message with Type=Directory, and one named link per entry.
func EncodeDirectory(childrens []DirectoryEntry) ([]byte, error) {
	pbd := appendPBData(nil, pbTDirectory, nil, nil, nil)

	var links []byte
	for _, c := range childrens {
		tsize, _ := c.TSize()
		linkBytes, err := encodePBLink(c.Cid, c.Name, tsize)
		if err != nil {
			return nil, err
		}
		links = protowire.AppendTag(links, 2, protowire.BytesType)
		links = protowire.AppendBytes(links, linkBytes)
	}

	return appendPBNode(links, pbd), nil
}

// EncodeSymlink renders a Symlink's DAG-PB wire bytes: a Data message
// with Type=Symlink and the link target as its Data, with no links.
func EncodeSymlink(target []byte) []byte {
	pbd := appendPBData(nil, pbTSymlink, target, nil, nil)
	return appendPBNode(nil, pbd)
}

func encodePBLink(c cid.Cid, name string, tsize uint64) ([]byte, error) {
	if !c.Defined() {
		return nil, errLinkMissingHash
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, c.Bytes())
	if name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	if tsize != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, tsize)
	}
	return b, nil
}

func appendPBData(b []byte, typ uint64, data []byte, filesize *uint64, blocksizes []uint64) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, typ)
	if data != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, data)
	}
	if filesize != nil {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, *filesize)
	}
	for _, bs := range blocksizes {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, bs)
	}
	return b
}

// appendPBNode wraps links (already tag-prefixed PBLink entries) and
// a Data payload into a full PBNode message, writing links first to
// match the reference go-merkledag encoder's byte order.
func appendPBNode(links []byte, data []byte) []byte {
	b := make([]byte, 0, len(links)+len(data)+8)
	b = append(b, links...)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	return b
}
