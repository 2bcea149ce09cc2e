package dag

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/storage"
)

// Node is one vertex of the state DAG. A key holds either a link to a child
// node or an inline value, never both.
type Node struct {
	Links  map[string][]byte      `msgpack:"l,omitempty"`
	Values map[string]interface{} `msgpack:"v,omitempty"`
}

func NewNode() *Node {
	return &Node{
		Links:  map[string][]byte{},
		Values: map[string]interface{}{},
	}
}

func (n *Node) Marshal() ([]byte, error) {
	return Encode(n)
}

func (n *Node) Unmarshal(b []byte) error {
	if err := Decode(b, n); err != nil {
		return errors.Wrap(err, "unmarshalling node")
	}

	if n.Links == nil {
		n.Links = map[string][]byte{}
	}
	if n.Values == nil {
		n.Values = map[string]interface{}{}
	}

	return nil
}

// Link returns the child CID stored under key
func (n *Node) Link(key string) (cid.Cid, bool) {
	l, ok := n.Links[key]
	if !ok {
		return cid.Undef, false
	}

	c, err := cid.Cast(l)
	if err != nil {
		return cid.Undef, false
	}

	return c, true
}

func (n *Node) setLink(key string, c cid.Cid) {
	delete(n.Values, key)
	n.Links[key] = c.Bytes()
}

func (n *Node) setValue(key string, v interface{}) {
	delete(n.Links, key)
	n.Values[key] = v
}

// AsMap renders the node as a plain map, links appear as cid.Cid values
func (n *Node) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, len(n.Links)+len(n.Values))

	for k, v := range n.Values {
		m[k] = v
	}
	for k := range n.Links {
		c, _ := n.Link(k)
		m[k] = c
	}

	return m
}

// LoadNode fetches and decodes a node. An undefined CID is the empty node.
func LoadNode(ctx context.Context, s storage.ContentStore, id cid.Cid) (*Node, error) {
	if !id.Defined() {
		return NewNode(), nil
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	n := &Node{}
	if err := n.Unmarshal(b); err != nil {
		return nil, err
	}

	return n, nil
}

// PutNode encodes and stores a node
func PutNode(ctx context.Context, s storage.ContentStore, n *Node) (cid.Cid, error) {
	b, err := n.Marshal()
	if err != nil {
		return cid.Undef, err
	}

	return s.Put(ctx, b)
}
