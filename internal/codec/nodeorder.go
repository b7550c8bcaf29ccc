package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NodeOrder is one line of the node order file: the engine's canonical order
// of external node ids for a class/spec combination.
type NodeOrder struct {
	Class   string
	Spec    string
	ClassID int
	SpecID  int
	NodeIDs []int
}

// Key returns "<class>_<spec>".
func (o NodeOrder) Key() string { return SpecTreeKey(o.Class, o.Spec) }

// String renders "<class>_<spec>:<class id>:<spec id>:<ids>".
func (o NodeOrder) String() string {
	return fmt.Sprintf("%s:%d:%d:%s", o.Key(), o.ClassID, o.SpecID, joinInts(o.NodeIDs))
}

// ParseNodeOrder parses one node order line.
func ParseNodeOrder(line string) (NodeOrder, error) {
	fields := strings.Split(strings.TrimSpace(line), fieldSep)
	if len(fields) != 4 {
		return NodeOrder{}, fmt.Errorf("node order: expected 4 fields, got %d", len(fields))
	}
	key, err := ParseKey(fields[0])
	if err != nil || key.IsClass || key.Custom {
		return NodeOrder{}, fmt.Errorf("node order: bad key %q", fields[0])
	}
	classID, err := strconv.Atoi(fields[1])
	if err != nil {
		return NodeOrder{}, fmt.Errorf("node order: class id: %w", err)
	}
	specID, err := strconv.Atoi(fields[2])
	if err != nil {
		return NodeOrder{}, fmt.Errorf("node order: spec id: %w", err)
	}
	ids, err := splitInts(fields[3])
	if err != nil {
		return NodeOrder{}, fmt.Errorf("node order: node ids: %w", err)
	}
	return NodeOrder{Class: key.Class, Spec: key.Spec, ClassID: classID, SpecID: specID, NodeIDs: ids}, nil
}

// WriteNodeOrders writes one line per order.
func WriteNodeOrders(w io.Writer, orders []NodeOrder) error {
	bw := bufio.NewWriter(w)
	for _, o := range orders {
		if _, err := bw.WriteString(o.String() + "\n"); err != nil {
			return fmt.Errorf("writing node order %s: %w", o.Key(), err)
		}
	}
	return bw.Flush()
}

// ReadNodeOrders parses a node order file, skipping blank lines.
func ReadNodeOrders(r io.Reader) ([]NodeOrder, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var orders []NodeOrder
	for n := 1; sc.Scan(); n++ {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		o, err := ParseNodeOrder(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		orders = append(orders, o)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading node orders: %w", err)
	}
	return orders, nil
}
