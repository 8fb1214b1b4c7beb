package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TxID correlates the lifecycle events of one packet or transaction. Numeric
// ids in the input are kept in their textual form.
type TxID string

func (id *TxID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TxID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("tx_id must be a string or number: %w", err)
	}
	*id = TxID(n.String())
	return nil
}

// IBCEventType names a step in the life of a cross-chain packet.
type IBCEventType string

const (
	IBCPacketCreated  IBCEventType = "packet_created"
	IBCPacketRelayed  IBCEventType = "packet_relayed"
	IBCPacketReceived IBCEventType = "packet_received"
	IBCAckGenerated   IBCEventType = "ack_generated"
	IBCAckRelayed     IBCEventType = "ack_relayed"
	IBCAckReceived    IBCEventType = "ack_received"
	IBCUnknown        IBCEventType = "unknown"
)

// Known reports whether the event name is one the harness emits.
func (e IBCEventType) Known() bool {
	switch e {
	case IBCPacketCreated, IBCPacketRelayed, IBCPacketReceived,
		IBCAckGenerated, IBCAckRelayed, IBCAckReceived, IBCUnknown:
		return true
	default:
		return false
	}
}

// TxEventType names a step in the life of a submitted transaction.
type TxEventType string

const (
	TxCreated         TxEventType = "created"
	TxSubmitted       TxEventType = "submitted"
	TxReceived        TxEventType = "received"
	TxIncludedInBlock TxEventType = "included_in_block"
	TxDropped         TxEventType = "dropped"
	TxUnknown         TxEventType = "unknown"
)

// Known reports whether the event name is one the harness emits.
func (e TxEventType) Known() bool {
	switch e {
	case TxCreated, TxSubmitted, TxReceived, TxIncludedInBlock, TxDropped, TxUnknown:
		return true
	default:
		return false
	}
}

// LifecycleEvent is a record that can be paired with another record of the
// same id to measure elapsed time.
type LifecycleEvent interface {
	EventName() string
	PairID() TxID
	EventTime() Timestamp
}

// IBCEvent is one line of ibc_events.jsonl. Only TS, Event and TxID are
// decoded strictly.
type IBCEvent struct {
	TS         Timestamp    `json:"ts"`
	Event      IBCEventType `json:"event"`
	TxID       TxID         `json:"tx_id"`
	SrcChain   Text         `json:"src_chain,omitempty"`
	DstChain   Text         `json:"dst_chain,omitempty"`
	SrcPort    Text         `json:"src_port,omitempty"`
	SrcChannel Text         `json:"src_channel,omitempty"`
	DstPort    Text         `json:"dst_port,omitempty"`
	DstChannel Text         `json:"dst_channel,omitempty"`
	Sequence   Number       `json:"sequence"`
	Payload    Text         `json:"payload,omitempty"`
	RelayerID  Text         `json:"relayer_id,omitempty"`
	LatencyMs  Number       `json:"latency_ms"`
}

func (e IBCEvent) EventName() string    { return string(e.Event) }
func (e IBCEvent) PairID() TxID         { return e.TxID }
func (e IBCEvent) EventTime() Timestamp { return e.TS }

// TxEvent is one line of transactions.jsonl.
type TxEvent struct {
	TS          Timestamp   `json:"ts"`
	Event       TxEventType `json:"event"`
	TxID        TxID        `json:"tx_id"`
	TxType      Text        `json:"tx_type,omitempty"`
	From        Text        `json:"from,omitempty"`
	To          Text        `json:"to,omitempty"`
	Payload     Text        `json:"payload,omitempty"`
	ChainID     Text        `json:"chain_id,omitempty"`
	NodeID      Text        `json:"node_id,omitempty"`
	BlockHeight Number      `json:"block_height"`
}

func (e TxEvent) EventName() string    { return string(e.Event) }
func (e TxEvent) PairID() TxID         { return e.TxID }
func (e TxEvent) EventTime() Timestamp { return e.TS }
