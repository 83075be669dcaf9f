package checkpoint

import (
	"github.com/gogo/protobuf/proto"
)

// WalkRecord is the persisted form of one partition's walk state.
type WalkRecord struct {
	JobKey   uint64   `protobuf:"varint,1,opt,name=JobKey,proto3" json:"JobKey,omitempty"`
	Part     uint32   `protobuf:"varint,2,opt,name=Part,proto3" json:"Part,omitempty"`
	NumNodes uint32   `protobuf:"varint,3,opt,name=NumNodes,proto3" json:"NumNodes,omitempty"`
	Start    uint64   `protobuf:"varint,4,opt,name=Start,proto3" json:"Start,omitempty"`
	Pos      uint64   `protobuf:"varint,5,opt,name=Pos,proto3" json:"Pos,omitempty"`
	End      uint64   `protobuf:"varint,6,opt,name=End,proto3" json:"End,omitempty"`
	XRed     uint64   `protobuf:"varint,7,opt,name=XRed,proto3" json:"XRed,omitempty"`
	Gamma    []uint64 `protobuf:"varint,8,rep,packed,name=Gamma,proto3" json:"Gamma,omitempty"`
	DeltaB   uint64   `protobuf:"varint,9,opt,name=DeltaB,proto3" json:"DeltaB,omitempty"`
	DeltaG   uint64   `protobuf:"varint,10,opt,name=DeltaG,proto3" json:"DeltaG,omitempty"`
	Sum      float64  `protobuf:"fixed64,11,opt,name=Sum,proto3" json:"Sum,omitempty"`
	Evals    uint64   `protobuf:"varint,12,opt,name=Evals,proto3" json:"Evals,omitempty"`
	Hits     uint64   `protobuf:"varint,13,opt,name=Hits,proto3" json:"Hits,omitempty"`
}

func (rec *WalkRecord) Reset()         { *rec = WalkRecord{} }
func (rec *WalkRecord) String() string { return proto.CompactTextString(rec) }
func (*WalkRecord) ProtoMessage()      {}

// Done returns true if this partition has walked its whole range.
func (rec *WalkRecord) Done() bool {
	return rec.Pos >= rec.End
}

// StoreState is the header record of a checkpoint db.
type StoreState struct {
	MajorVers uint32 `protobuf:"varint,1,opt,name=MajorVers,proto3" json:"MajorVers,omitempty"`
	MinorVers uint32 `protobuf:"varint,2,opt,name=MinorVers,proto3" json:"MinorVers,omitempty"`
	NumSaves  uint64 `protobuf:"varint,3,opt,name=NumSaves,proto3" json:"NumSaves,omitempty"`
}

func (state *StoreState) Reset()         { *state = StoreState{} }
func (state *StoreState) String() string { return proto.CompactTextString(state) }
func (*StoreState) ProtoMessage()        {}
