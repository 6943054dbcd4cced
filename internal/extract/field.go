package extract

// Field is the result of looking up one value inside a row: either found
// (possibly with empty text) or absent.
type Field struct {
	Value string
	Found bool
}

// Found returns a present field.
func Found(v string) Field {
	return Field{Value: v, Found: true}
}

// Absent is the zero Field.
var Absent = Field{}

// Or returns the value when found, def otherwise.
func (f Field) Or(def string) string {
	if f.Found {
		return f.Value
	}
	return def
}

// OrElse returns f when found, otherwise the result of next.
func (f Field) OrElse(next func() Field) Field {
	if f.Found {
		return f
	}
	return next()
}
