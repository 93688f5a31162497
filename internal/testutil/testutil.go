// Package testutil writes source fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ZooSource declares three classes in namespace Zoo. Dog.Bark has
// complexity 2 (an if and a for). Dog inherits Animal and holds a Bowl
// field, and Bowl.Fill takes a Dog, so Dog and Bowl form a cycle.
const ZooSource = `namespace Zoo
{
    public class Dog : Animal
    {
        private Bowl bowl;

        public void Bark(int times)
        {
            int a = 1;
            if (a > 0)
            {
                a++;
            }
            for (int i = 0; i < times; i++)
            {
                a--;
            }
        }
    }

    public class Animal
    {
    }

    public class Bowl
    {
        public void Fill(Dog d)
        {
        }
    }
}
`

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of relative path to
// content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, name), content)
	}
}

// ZooDir returns a temporary directory holding Zoo.cs with ZooSource and a
// notes.txt that the default patterns skip.
func ZooDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	CreateFileTree(t, dir, map[string]string{
		"Zoo.cs":    ZooSource,
		"notes.txt": "class Ignored { }",
	})
	return dir
}
