package templating

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var embedded embed.FS

type templates struct {
	cached map[string]*template.Template
	lock   sync.Mutex
}

var instance = &templates{cached: make(map[string]*template.Template)}

func GetTemplate(name string) (*template.Template, error) {
	instance.lock.Lock()
	defer instance.lock.Unlock()

	if v, ok := instance.cached[name]; ok {
		return v, nil
	}

	fname := fmt.Sprintf("%s.html", name)
	t, err := template.New(fname).ParseFS(embedded, "templates/"+fname)
	if err != nil {
		return nil, err
	}

	instance.cached[name] = t
	return t, nil
}

// Render executes the named template against the model.
func Render(name string, model interface{}) (string, error) {
	t, err := GetTemplate(name)
	if err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	if err = t.Execute(buf, model); err != nil {
		return "", err
	}
	return buf.String(), nil
}
