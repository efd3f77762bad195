package membership

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jtarrio/kafkacore/proto"
)

// ConsumerMetadata is the metadata blob for the standard "consumer"
// protocol_type: the topics a member wants to subscribe to, plus an opaque
// user-data blob carried through unchanged.
type ConsumerMetadata struct {
	Version  int16
	Topics   []string
	UserData []byte
}

// ConsumerAssignment is the assignment blob the group leader computes and
// SyncGroup hands back to each member.
type ConsumerAssignment struct {
	Version        int16
	TopicPartition map[string][]int32
	UserData       []byte
}

// ConsumerEncoder implements Encoder for protocol_type "consumer", the
// protocol every stock Kafka consumer group speaks.
type ConsumerEncoder struct{}

func (ConsumerEncoder) EncodeMetadata(w *proto.Writer, v interface{}) error {
	m, ok := v.(*ConsumerMetadata)
	if !ok {
		return fmt.Errorf("membership: EncodeMetadata expected *ConsumerMetadata, got %T", v)
	}
	w.WriteInt16(m.Version)
	w.WriteArrayLen(len(m.Topics))
	for _, t := range m.Topics {
		w.WriteString(t)
	}
	w.WriteBytes(m.UserData)
	return nil
}

func (ConsumerEncoder) DecodeMetadata(protocolName string, r *proto.Reader) (interface{}, error) {
	m := &ConsumerMetadata{}
	var err error
	if m.Version, err = r.ReadInt16(); err != nil {
		return nil, err
	}
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		s, err := r.ReadNonNullString()
		if err != nil {
			return nil, err
		}
		m.Topics = append(m.Topics, s)
	}
	if m.UserData, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return m, nil
}

func (ConsumerEncoder) EncodeAssignment(w *proto.Writer, v interface{}) error {
	a, ok := v.(*ConsumerAssignment)
	if !ok {
		return fmt.Errorf("membership: EncodeAssignment expected *ConsumerAssignment, got %T", v)
	}
	w.WriteInt16(a.Version)
	w.WriteArrayLen(len(a.TopicPartition))
	for topic, partitions := range a.TopicPartition {
		w.WriteString(topic)
		w.WriteArrayLen(len(partitions))
		for _, p := range partitions {
			w.WriteInt32(p)
		}
	}
	w.WriteBytes(a.UserData)
	return nil
}

func (ConsumerEncoder) DecodeAssignment(r *proto.Reader) (interface{}, error) {
	a := &ConsumerAssignment{TopicPartition: make(map[string][]int32)}
	var err error
	if a.Version, err = r.ReadInt16(); err != nil {
		return nil, err
	}
	n, err := r.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		topic, err := r.ReadNonNullString()
		if err != nil {
			return nil, err
		}
		pn, err := r.ReadArrayLen()
		if err != nil {
			return nil, err
		}
		partitions := make([]int32, 0, pn)
		for j := 0; j < pn; j++ {
			p, err := r.ReadInt32()
			if err != nil {
				return nil, err
			}
			partitions = append(partitions, p)
		}
		a.TopicPartition[topic] = partitions
	}
	if a.UserData, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewMemberID formats a JoinGroup member id candidate as
// "<prefix>-<uuid>", the conventional shape real Kafka clients (and
// brokers, which otherwise assign one on the member's behalf) use to give
// members a stable, human-greppable identity across rejoins. prefix is
// typically the client id.
func NewMemberID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
