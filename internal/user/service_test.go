package user

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	users  map[int64]*User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*User), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, req *CreateUserRequest) (*User, error) {
	u := &User{ID: f.nextID, Name: req.Name, Email: req.Email, CreatedAt: time.Now()}
	f.users[u.ID] = u
	f.nextID++
	return u, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	return f.users[id], nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	return u, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	u, err := svc.Create(ctx, &CreateUserRequest{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == 0 {
		t.Error("created user has no ID")
	}

	_, err = svc.Create(ctx, &CreateUserRequest{Name: "Alice 2", Email: "alice@example.com"})
	if !errors.Is(err, ErrEmailAlreadyInUse) {
		t.Errorf("got %v, want ErrEmailAlreadyInUse", err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateUserRequest{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Bob" {
		t.Errorf("got name %q, want Bob", got.Name)
	}

	if _, err := svc.GetByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewService(newFakeStore())
	name := "Nobody"
	if _, err := svc.Update(context.Background(), 42, &UpdateUserRequest{Name: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}
