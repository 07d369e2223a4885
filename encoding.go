package saw

import (
	"encoding/json"
	"io"
	"reflect"

	"github.com/golang/protobuf/proto"
)

// ValueEncoder writes value's wire representation to w. Implementations
// should not retain w past the call.
type ValueEncoder interface {
	EncodeValue(value interface{}, w io.Writer) error
}

type ValueDecoder interface {
	DecodeValue(buf []byte) (interface{}, error)
}

type JSONEncoder struct{}

func (je JSONEncoder) EncodeValue(value interface{}, w io.Writer) error {
	return json.NewEncoder(w).Encode(value)
}

type JSONDecoder struct {
	ValueType reflect.Type
}

func (jd JSONDecoder) DecodeValue(buf []byte) (interface{}, error) {
	value := reflect.New(jd.ValueType).Interface()
	if err := json.Unmarshal(buf, value); err != nil {
		return nil, err
	}
	return value, nil
}

func NewJSONDecoder(example interface{}) JSONDecoder {
	return JSONDecoder{
		ValueType: reflect.TypeOf(example).Elem(),
	}
}

type ProtoEncoder struct{}

func (pe ProtoEncoder) EncodeValue(value interface{}, w io.Writer) error {
	b, err := proto.Marshal(value.(proto.Message))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

type ProtoDecoder struct {
	ValueType reflect.Type
}

func (pd ProtoDecoder) DecodeValue(buf []byte) (interface{}, error) {
	message := reflect.New(pd.ValueType).Interface().(proto.Message)
	if err := proto.Unmarshal(buf, message); err != nil {
		return nil, err
	}
	return message, nil
}

func NewProtoDecoder(example interface{}) ProtoDecoder {
	return ProtoDecoder{
		ValueType: reflect.TypeOf(example).Elem(),
	}
}
