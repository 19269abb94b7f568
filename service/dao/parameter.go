package dao

// Parameter narrows a List call. Stores decide which names they understand.
type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, value interface{}) *Parameter {
	return &Parameter{Name: name, Value: value}
}
