package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSClient hands leads to the CRM collaborator via NATS
// request/reply on a configured subject.
type NATSClient struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

func NewNATSClient(url, subject, serviceName string, timeout time.Duration) (*NATSClient, error) {
	conn, err := nats.Connect(url,
		nats.Name(serviceName),
		nats.Timeout(timeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS server: %s", url)

	return &NATSClient{
		conn:    conn,
		subject: subject,
		timeout: timeout,
	}, nil
}

type createLeadReply struct {
	LeadID string `json:"lead_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CreateLead sends the payload and waits for the CRM acknowledgement.
func (c *NATSClient) CreateLead(ctx context.Context, payload *Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lead payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.conn.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		return "", fmt.Errorf("lead hand-off request failed: %w", err)
	}

	var reply createLeadReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return "", fmt.Errorf("failed to parse lead reply: %w", err)
	}
	if reply.LeadID == "" {
		return "", fmt.Errorf("CRM rejected lead: %s", reply.Error)
	}

	log.Printf("Lead created: %s (status: %s)", reply.LeadID, reply.Status)
	return reply.LeadID, nil
}

func (c *NATSClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
		log.Println("NATS connection closed")
	}
	return nil
}
