// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: policy/v1/policy.proto

package policyv1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type BookingPolicyRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	CounselorId   string                 `protobuf:"bytes,1,opt,name=counselor_id,json=counselorId,proto3" json:"counselor_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *BookingPolicyRequest) Reset() {
	*x = BookingPolicyRequest{}
	mi := &file_policy_v1_policy_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *BookingPolicyRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*BookingPolicyRequest) ProtoMessage() {}

func (x *BookingPolicyRequest) ProtoReflect() protoreflect.Message {
	mi := &file_policy_v1_policy_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use BookingPolicyRequest.ProtoReflect.Descriptor instead.
func (*BookingPolicyRequest) Descriptor() ([]byte, []int) {
	return file_policy_v1_policy_proto_rawDescGZIP(), []int{0}
}

func (x *BookingPolicyRequest) GetCounselorId() string {
	if x != nil {
		return x.CounselorId
	}
	return ""
}

type BookingPolicyResponse struct {
	state                    protoimpl.MessageState `protogen:"open.v1"`
	HorizonDays              int32                  `protobuf:"varint,1,opt,name=horizon_days,json=horizonDays,proto3" json:"horizon_days,omitempty"`
	GranularityMinutes       int32                  `protobuf:"varint,2,opt,name=granularity_minutes,json=granularityMinutes,proto3" json:"granularity_minutes,omitempty"`
	DefaultMaxSessionsPerDay int32                  `protobuf:"varint,3,opt,name=default_max_sessions_per_day,json=defaultMaxSessionsPerDay,proto3" json:"default_max_sessions_per_day,omitempty"`
	unknownFields            protoimpl.UnknownFields
	sizeCache                protoimpl.SizeCache
}

func (x *BookingPolicyResponse) Reset() {
	*x = BookingPolicyResponse{}
	mi := &file_policy_v1_policy_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *BookingPolicyResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*BookingPolicyResponse) ProtoMessage() {}

func (x *BookingPolicyResponse) ProtoReflect() protoreflect.Message {
	mi := &file_policy_v1_policy_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use BookingPolicyResponse.ProtoReflect.Descriptor instead.
func (*BookingPolicyResponse) Descriptor() ([]byte, []int) {
	return file_policy_v1_policy_proto_rawDescGZIP(), []int{1}
}

func (x *BookingPolicyResponse) GetHorizonDays() int32 {
	if x != nil {
		return x.HorizonDays
	}
	return 0
}

func (x *BookingPolicyResponse) GetGranularityMinutes() int32 {
	if x != nil {
		return x.GranularityMinutes
	}
	return 0
}

func (x *BookingPolicyResponse) GetDefaultMaxSessionsPerDay() int32 {
	if x != nil {
		return x.DefaultMaxSessionsPerDay
	}
	return 0
}

var File_policy_v1_policy_proto protoreflect.FileDescriptor

const file_policy_v1_policy_proto_rawDesc = "" +
	"\n" +
	"\x16policy/v1/policy.proto\x12\x14counselhub.policy.v1\"9\n" +
	"\x14BookingPolicyRequest\x12!\n" +
	"\fcounselor_id\x18\x01 \x01(\tR\vcounselorId\"\xab\x01\n" +
	"\x15BookingPolicyResponse\x12!\n" +
	"\fhorizon_days\x18\x01 \x01(\x05R\vhorizonDays\x12/\n" +
	"\x13granularity_minutes\x18\x02 \x01(\x05R\x12granularityMinutes\x12>\n" +
	"\x1cdefault_max_sessions_per_day\x18\x03 \x01(\x05R\x18defaultMaxSessionsPerDay2\x86\x01\n" +
	"\x17SchedulingPolicyService\x12k\n" +
	"\x10GetBookingPolicy\x12*.counselhub.policy.v1.BookingPolicyRequest\x1a+.counselhub.policy.v1.BookingPolicyResponseBAZ?github.com/rafid-karim/counselhub/protos/gen/policy/v1;policyv1b\x06proto3"

var (
	file_policy_v1_policy_proto_rawDescOnce sync.Once
	file_policy_v1_policy_proto_rawDescData []byte
)

func file_policy_v1_policy_proto_rawDescGZIP() []byte {
	file_policy_v1_policy_proto_rawDescOnce.Do(func() {
		file_policy_v1_policy_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_policy_v1_policy_proto_rawDesc), len(file_policy_v1_policy_proto_rawDesc)))
	})
	return file_policy_v1_policy_proto_rawDescData
}

var file_policy_v1_policy_proto_msgTypes = make([]protoimpl.MessageInfo, 2)
var file_policy_v1_policy_proto_goTypes = []any{
	(*BookingPolicyRequest)(nil),  // 0: counselhub.policy.v1.BookingPolicyRequest
	(*BookingPolicyResponse)(nil), // 1: counselhub.policy.v1.BookingPolicyResponse
}
var file_policy_v1_policy_proto_depIdxs = []int32{
	0, // 0: counselhub.policy.v1.SchedulingPolicyService.GetBookingPolicy:input_type -> counselhub.policy.v1.BookingPolicyRequest
	1, // 1: counselhub.policy.v1.SchedulingPolicyService.GetBookingPolicy:output_type -> counselhub.policy.v1.BookingPolicyResponse
	1, // [1:2] is the sub-list for method output_type
	0, // [0:1] is the sub-list for method input_type
	0, // [0:0] is the sub-list for extension type_name
	0, // [0:0] is the sub-list for extension extendee
	0, // [0:0] is the sub-list for field type_name
}

func init() { file_policy_v1_policy_proto_init() }
func file_policy_v1_policy_proto_init() {
	if File_policy_v1_policy_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_policy_v1_policy_proto_rawDesc), len(file_policy_v1_policy_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   2,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_policy_v1_policy_proto_goTypes,
		DependencyIndexes: file_policy_v1_policy_proto_depIdxs,
		MessageInfos:      file_policy_v1_policy_proto_msgTypes,
	}.Build()
	File_policy_v1_policy_proto = out.File
	file_policy_v1_policy_proto_goTypes = nil
	file_policy_v1_policy_proto_depIdxs = nil
}
