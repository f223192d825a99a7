package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/dbx"
	"github.com/dmitrijs2005/blogportal/internal/logging"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/comments"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/likes"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/users"
)

// --- helpers ---

var errBoom = errors.New("db error: connection reset")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		_ = db.Close()
	})
	return db, mock
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger keeps every entry so tests can check what was logged.
type recordingLogger struct {
	mu      sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]logEntry{}}
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.add("error", msg, args) }
func (l *recordingLogger) With(args ...any) logging.Logger                  { return l }

func (l *recordingLogger) errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range *l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

// --- in-memory store ---

type likeKey struct{ userID, postID int64 }

// fakeStore is a tiny in-memory rendition of the schema, including the
// cascades, shared by all fake repositories of one test.
type fakeStore struct {
	nextID   int64
	users    map[int64]*models.User
	posts    map[int64]*models.Post
	likes    map[likeKey]bool
	comments map[int64]*models.Comment

	// failures injected per operation name, e.g. "likes.Count"
	fail map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*models.User{},
		posts:    map[int64]*models.Post{},
		likes:    map[likeKey]bool{},
		comments: map[int64]*models.Comment{},
		fail:     map[string]error{},
	}
}

func (s *fakeStore) id() int64 { s.nextID++; return s.nextID }

func (s *fakeStore) failure(op string) error { return s.fail[op] }

func (s *fakeStore) addUser(name, email, role string) *models.User {
	u := &models.User{ID: s.id(), UserName: name, Email: email, Role: role, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addPost(owner int64, title, content string) *models.Post {
	p := &models.Post{ID: s.id(), UserID: owner, Title: title, Content: content, CreatedAt: time.Now()}
	s.posts[p.ID] = p
	return p
}

func (s *fakeStore) deletePostCascade(id int64) {
	delete(s.posts, id)
	for k := range s.likes {
		if k.postID == id {
			delete(s.likes, k)
		}
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *fakeStore) likeCount(postID int64) int64 {
	var n int64
	for k := range s.likes {
		if k.postID == postID {
			n++
		}
	}
	return n
}

func (s *fakeStore) summary(p *models.Post) *models.PostSummary {
	var cc int64
	for _, c := range s.comments {
		if c.PostID == p.ID {
			cc++
		}
	}
	name := ""
	if u, ok := s.users[p.UserID]; ok {
		name = u.UserName
	}
	return &models.PostSummary{Post: *p, AuthorName: name, LikeCount: s.likeCount(p.ID), CommentCount: cc}
}

func (s *fakeStore) sortedPosts(filter func(*models.Post) bool) []*models.PostSummary {
	out := []*models.PostSummary{}
	for _, p := range s.posts {
		if filter == nil || filter(p) {
			out = append(out, s.summary(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// --- users ---

type fakeUsersRepo struct{ s *fakeStore }

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if err := r.s.failure("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if err := r.s.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := r.s.failure("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByUserName(_ context.Context, name string) (*models.User, error) {
	if err := r.s.failure("users.GetByUserName"); err != nil {
		return nil, err
	}
	var found *models.User
	for _, u := range r.s.users {
		if u.UserName == name && (found == nil || u.ID < found.ID) {
			found = u
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	cp := *found
	return &cp, nil
}

func (r *fakeUsersRepo) EmailExists(_ context.Context, email string) (bool, error) {
	if err := r.s.failure("users.EmailExists"); err != nil {
		return false, err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUsersRepo) List(_ context.Context) ([]*models.User, error) {
	if err := r.s.failure("users.List"); err != nil {
		return nil, err
	}
	out := []*models.User{}
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeUsersRepo) Delete(_ context.Context, id int64) error {
	if err := r.s.failure("users.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.posts {
		if p.UserID == id {
			r.s.deletePostCascade(pid)
		}
	}
	for k := range r.s.likes {
		if k.userID == id {
			delete(r.s.likes, k)
		}
	}
	for cid, c := range r.s.comments {
		if c.UserID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

// --- posts ---

type fakePostsRepo struct{ s *fakeStore }

func (r *fakePostsRepo) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	if err := r.s.failure("posts.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.users[p.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	cp := *p
	r.s.posts[p.ID] = &cp
	return p, nil
}

func (r *fakePostsRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	if err := r.s.failure("posts.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostsRepo) LockShared(_ context.Context, id int64) error {
	if err := r.s.failure("posts.LockShared"); err != nil {
		return err
	}
	if _, ok := r.s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *fakePostsRepo) Update(_ context.Context, p *models.Post) error {
	if err := r.s.failure("posts.Update"); err != nil {
		return err
	}
	stored, ok := r.s.posts[p.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Title = p.Title
	stored.Content = p.Content
	return nil
}

func (r *fakePostsRepo) Delete(_ context.Context, id int64) error {
	if err := r.s.failure("posts.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.deletePostCascade(id)
	return nil
}

func (r *fakePostsRepo) ListSummaries(_ context.Context) ([]*models.PostSummary, error) {
	if err := r.s.failure("posts.ListSummaries"); err != nil {
		return nil, err
	}
	return r.s.sortedPosts(nil), nil
}

func (r *fakePostsRepo) ListSummariesByUser(_ context.Context, userID int64) ([]*models.PostSummary, error) {
	if err := r.s.failure("posts.ListSummariesByUser"); err != nil {
		return nil, err
	}
	return r.s.sortedPosts(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r *fakePostsRepo) GetSummary(_ context.Context, id int64) (*models.PostSummary, error) {
	if err := r.s.failure("posts.GetSummary"); err != nil {
		return nil, err
	}
	p, ok := r.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.s.summary(p), nil
}

func (r *fakePostsRepo) StatsByUser(_ context.Context, userID int64) (*models.DashboardStats, error) {
	if err := r.s.failure("posts.StatsByUser"); err != nil {
		return nil, err
	}
	st := &models.DashboardStats{}
	for _, sum := range r.s.sortedPosts(func(p *models.Post) bool { return p.UserID == userID }) {
		st.TotalPosts++
		st.TotalLikes += sum.LikeCount
		st.TotalComments += sum.CommentCount
	}
	return st, nil
}

// --- likes ---

type fakeLikesRepo struct{ s *fakeStore }

func (r *fakeLikesRepo) Delete(_ context.Context, userID, postID int64) (bool, error) {
	if err := r.s.failure("likes.Delete"); err != nil {
		return false, err
	}
	k := likeKey{userID, postID}
	if !r.s.likes[k] {
		return false, nil
	}
	delete(r.s.likes, k)
	return true, nil
}

func (r *fakeLikesRepo) Insert(_ context.Context, userID, postID int64) (bool, error) {
	if err := r.s.failure("likes.Insert"); err != nil {
		return false, err
	}
	if _, ok := r.s.posts[postID]; !ok {
		return false, common.ErrorNotFound
	}
	k := likeKey{userID, postID}
	if r.s.likes[k] {
		return false, nil
	}
	r.s.likes[k] = true
	return true, nil
}

func (r *fakeLikesRepo) Exists(_ context.Context, userID, postID int64) (bool, error) {
	if err := r.s.failure("likes.Exists"); err != nil {
		return false, err
	}
	return r.s.likes[likeKey{userID, postID}], nil
}

func (r *fakeLikesRepo) Count(_ context.Context, postID int64) (int64, error) {
	if err := r.s.failure("likes.Count"); err != nil {
		return 0, err
	}
	return r.s.likeCount(postID), nil
}

// --- comments ---

type fakeCommentsRepo struct{ s *fakeStore }

func (r *fakeCommentsRepo) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	if err := r.s.failure("comments.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.posts[c.PostID]; !ok {
		return nil, common.ErrorNotFound
	}
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	cp := *c
	r.s.comments[c.ID] = &cp
	return c, nil
}

func (r *fakeCommentsRepo) view(c *models.Comment) *models.CommentView {
	v := &models.CommentView{Comment: *c}
	if u, ok := r.s.users[c.UserID]; ok {
		v.AuthorName = u.UserName
	}
	return v
}

func (r *fakeCommentsRepo) ListByPost(_ context.Context, postID int64) ([]*models.CommentView, error) {
	if err := r.s.failure("comments.ListByPost"); err != nil {
		return nil, err
	}
	out := []*models.CommentView{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, r.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommentsRepo) ListAll(_ context.Context) ([]*models.CommentView, error) {
	if err := r.s.failure("comments.ListAll"); err != nil {
		return nil, err
	}
	out := []*models.CommentView{}
	for _, c := range r.s.comments {
		v := r.view(c)
		if p, ok := r.s.posts[c.PostID]; ok {
			v.PostTitle = p.Title
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeCommentsRepo) Delete(_ context.Context, id int64) error {
	if err := r.s.failure("comments.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.comments, id)
	return nil
}

// --- manager ---

type fakeRepoManager struct{ s *fakeStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return &fakeUsersRepo{m.s} }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository             { return &fakePostsRepo{m.s} }
func (m *fakeRepoManager) Likes(dbx.DBTX) likes.Repository             { return &fakeLikesRepo{m.s} }
func (m *fakeRepoManager) Comments(dbx.DBTX) comments.Repository       { return &fakeCommentsRepo{m.s} }
