package storage

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock with the same upload surface as Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(dir string, name string, r io.Reader) (StoredFile, error) {
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	args := m.Called(dir, name)
	return args.Get(0).(StoredFile), args.Error(1)
}

func (m *MockStorage) Remove(rel string) error {
	args := m.Called(rel)
	return args.Error(0)
}
