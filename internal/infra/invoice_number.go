package infra

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceNumberer mints INV-YYYYMMDD-<snowflake> numbers. The snowflake id is
// unique per node, so distinct SNOWFLAKE_NODE values are required per instance.
type InvoiceNumberer struct {
	node *snowflake.Node
	now  func() time.Time
}

func NewInvoiceNumberer(nodeID int64) (*InvoiceNumberer, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &InvoiceNumberer{node: node, now: time.Now}, nil
}

func (n *InvoiceNumberer) Next() string {
	return fmt.Sprintf("INV-%s-%s", n.now().Format("20060102"), n.node.Generate().String())
}
