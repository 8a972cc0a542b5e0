package realtime

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	// Register all incoming message types
	RegisterType(&MessagePing{})
	RegisterType(&MessagePong{})
	RegisterType(&MessageTyping{})
	RegisterType(&MessageRead{})
}

func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}
