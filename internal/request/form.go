package request

// FormField is a single text field of a multipart form.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a single byte part of a multipart form.
type FormFile struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// Form is a multipart form payload: ordered text fields plus byte parts.
type Form struct {
	Fields []FormField
	Files  []FormFile
}

// NewForm returns an empty multipart form.
func NewForm() Form { return Form{} }

// WithField appends a text field.
func (f Form) WithField(name, value string) Form {
	f.Fields = append(append([]FormField{}, f.Fields...), FormField{Name: name, Value: value})
	return f
}

// WithFile appends a byte part. ContentType defaults to
// application/octet-stream when left empty at send time.
func (f Form) WithFile(name, fileName string, data []byte) Form {
	f.Files = append(append([]FormFile{}, f.Files...), FormFile{Name: name, FileName: fileName, Data: data})
	return f
}

// Empty reports whether the form carries no fields or files.
func (f Form) Empty() bool { return len(f.Fields) == 0 && len(f.Files) == 0 }
