package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
)

// In-memory repository fakes shared by the service tests.

type memAdminRepo struct {
	admins  map[string]*model.Admin // keyed by id
	findErr error
}

func newMemAdminRepo(admins ...*model.Admin) *memAdminRepo {
	r := &memAdminRepo{admins: make(map[string]*model.Admin)}
	for _, a := range admins {
		r.admins[a.ID] = a
	}
	return r
}

func (r *memAdminRepo) FindByAdminID(ctx context.Context, adminID string) (*model.Admin, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.admins {
		if a.AdminID == adminID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAdminRepo) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.admins[id], nil
}

func (r *memAdminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	admin := &model.Admin{
		ID:           fmt.Sprintf("admin-%d", len(r.admins)+1),
		AdminID:      params.AdminID,
		PasswordHash: params.PasswordHash,
		FullName:     params.FullName,
		Email:        params.Email,
		CreatedAt:    time.Now(),
	}
	r.admins[admin.ID] = admin
	return admin, nil
}

func (r *memAdminRepo) UpdateLastLogin(ctx context.Context, id string) error {
	if a, ok := r.admins[id]; ok {
		now := time.Now()
		a.LastLoginAt = &now
	}
	return nil
}

func (r *memAdminRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if a, ok := r.admins[id]; ok {
		a.PasswordHash = passwordHash
	}
	return nil
}

type memAdminSessionRepo struct {
	sessions  map[string]*model.AdminSession // keyed by token hash
	createErr error
	findErr   error
}

func newMemAdminSessionRepo() *memAdminSessionRepo {
	return &memAdminSessionRepo{sessions: make(map[string]*model.AdminSession)}
}

func (r *memAdminSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminSession, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.sessions[tokenHash], nil
}

func (r *memAdminSessionRepo) Create(ctx context.Context, params model.CreateAdminSessionParams) (*model.AdminSession, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	session := &model.AdminSession{
		ID:        fmt.Sprintf("session-%d", len(r.sessions)+1),
		TokenHash: params.TokenHash,
		AdminID:   params.AdminID,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: time.Now(),
	}
	r.sessions[params.TokenHash] = session
	return session, nil
}

func (r *memAdminSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	delete(r.sessions, tokenHash)
	return nil
}

func (r *memAdminSessionRepo) DeleteByAdminID(ctx context.Context, adminID string) error {
	for hash, s := range r.sessions {
		if s.AdminID == adminID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *memAdminSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for hash, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	users    map[string]*model.User // keyed by id
	findErr  error
	countErr error
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.users[id], nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindAll(ctx context.Context, limit, offset int) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.users), nil
}

func (r *memUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	user := &model.User{
		ID:           fmt.Sprintf("user-%d", len(r.users)+1),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		DisplayName:  params.DisplayName,
		Credits:      0,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	return nil
}

// AdjustCredits mirrors the SQL guard: the balance never goes below zero,
// and a blocked deduction returns nil, nil.
func (r *memUserRepo) AdjustCredits(ctx context.Context, id string, delta int) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if u.Credits+delta < 0 {
		return nil, nil
	}
	u.Credits += delta
	return u, nil
}

func (r *memUserRepo) SetActive(ctx context.Context, id string, isActive bool) error {
	if u, ok := r.users[id]; ok {
		u.IsActive = isActive
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

type memUserSessionRepo struct {
	sessions  map[string]*model.UserSession
	createErr error
}

func newMemUserSessionRepo() *memUserSessionRepo {
	return &memUserSessionRepo{sessions: make(map[string]*model.UserSession)}
}

func (r *memUserSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.UserSession, error) {
	return r.sessions[tokenHash], nil
}

func (r *memUserSessionRepo) Create(ctx context.Context, params model.CreateUserSessionParams) (*model.UserSession, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	session := &model.UserSession{
		ID:        fmt.Sprintf("usession-%d", len(r.sessions)+1),
		TokenHash: params.TokenHash,
		UserID:    params.UserID,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: time.Now(),
	}
	r.sessions[params.TokenHash] = session
	return session, nil
}

func (r *memUserSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	delete(r.sessions, tokenHash)
	return nil
}

func (r *memUserSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	for hash, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *memUserSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type memArticleRepo struct {
	articles  map[string]*model.Article
	createErr error
}

func newMemArticleRepo(articles ...*model.Article) *memArticleRepo {
	r := &memArticleRepo{articles: make(map[string]*model.Article)}
	for _, a := range articles {
		r.articles[a.ID] = a
	}
	return r
}

func (r *memArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	return r.articles[id], nil
}

func (r *memArticleRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Article, int, error) {
	var out []model.Article
	for _, a := range r.articles {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (r *memArticleRepo) FindAll(ctx context.Context, status string, limit, offset int) ([]model.Article, int, error) {
	var out []model.Article
	for _, a := range r.articles {
		if status == "" || string(a.Status) == status {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (r *memArticleRepo) Create(ctx context.Context, params model.CreateArticleParams) (*model.Article, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	article := &model.Article{
		ID:          fmt.Sprintf("article-%d", len(r.articles)+1),
		UserID:      params.UserID,
		Title:       params.Title,
		Body:        params.Body,
		WordCount:   params.WordCount,
		Status:      model.ArticleStatusDraft,
		AIGenerated: params.AIGenerated,
		AIModel:     params.AIModel,
		CreatedAt:   time.Now(),
	}
	r.articles[article.ID] = article
	return article, nil
}

func (r *memArticleRepo) Update(ctx context.Context, id string, params model.UpdateArticleParams) (*model.Article, error) {
	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	if params.Title != nil {
		a.Title = *params.Title
	}
	if params.Body != nil {
		a.Body = *params.Body
	}
	if params.WordCount != nil {
		a.WordCount = *params.WordCount
	}
	return a, nil
}

func (r *memArticleRepo) SetStatus(ctx context.Context, id string, status model.ArticleStatus) error {
	if a, ok := r.articles[id]; ok {
		a.Status = status
	}
	return nil
}

func (r *memArticleRepo) Delete(ctx context.Context, id string) error {
	delete(r.articles, id)
	return nil
}

func (r *memArticleRepo) CountByStatus(ctx context.Context, status model.ArticleStatus) (int, error) {
	n := 0
	for _, a := range r.articles {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memArticleRepo) WithTx(tx *sqlx.Tx) repository.ArticleRepository {
	return r
}

type memOrderRepo struct {
	orders map[string]*model.Order
}

func newMemOrderRepo(orders ...*model.Order) *memOrderRepo {
	r := &memOrderRepo{orders: make(map[string]*model.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *memOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return r.orders[id], nil
}

func (r *memOrderRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (r *memOrderRepo) FindAll(ctx context.Context, status string, limit, offset int) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range r.orders {
		if status == "" || string(o.Status) == status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (r *memOrderRepo) Create(ctx context.Context, params model.CreateOrderParams) (*model.Order, error) {
	order := &model.Order{
		ID:          fmt.Sprintf("order-%d", len(r.orders)+1),
		UserID:      params.UserID,
		ArticleID:   params.ArticleID,
		PublisherID: params.PublisherID,
		AmountCents: params.AmountCents,
		Status:      model.OrderStatusPending,
		CreatedAt:   time.Now(),
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *memOrderRepo) SetStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	now := time.Now()
	switch status {
	case model.OrderStatusPaid:
		o.PaidAt = &now
	case model.OrderStatusPublished:
		o.PublishedAt = &now
	}
	return o, nil
}

func (r *memOrderRepo) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (r *memOrderRepo) CountByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	n := 0
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memOrderRepo) WithTx(tx *sqlx.Tx) repository.OrderRepository {
	return r
}

type memPublisherRepo struct {
	publishers map[string]*model.Publisher
}

func newMemPublisherRepo(publishers ...*model.Publisher) *memPublisherRepo {
	r := &memPublisherRepo{publishers: make(map[string]*model.Publisher)}
	for _, p := range publishers {
		r.publishers[p.ID] = p
	}
	return r
}

func (r *memPublisherRepo) FindByID(ctx context.Context, id string) (*model.Publisher, error) {
	return r.publishers[id], nil
}

func (r *memPublisherRepo) FindActive(ctx context.Context, category string, limit, offset int) ([]model.Publisher, int, error) {
	var out []model.Publisher
	for _, p := range r.publishers {
		if p.IsActive && (category == "" || p.Category == category) {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *memPublisherRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Publisher, int, error) {
	var out []model.Publisher
	for _, p := range r.publishers {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memPublisherRepo) Create(ctx context.Context, params model.CreatePublisherParams) (*model.Publisher, error) {
	p := &model.Publisher{
		ID:           fmt.Sprintf("publisher-%d", len(r.publishers)+1),
		Name:         params.Name,
		Website:      params.Website,
		Category:     params.Category,
		AudienceSize: params.AudienceSize,
		PriceCents:   params.PriceCents,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	r.publishers[p.ID] = p
	return p, nil
}

func (r *memPublisherRepo) Update(ctx context.Context, id string, params model.UpdatePublisherParams) (*model.Publisher, error) {
	p, ok := r.publishers[id]
	if !ok {
		return nil, nil
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.PriceCents != nil {
		p.PriceCents = *params.PriceCents
	}
	if params.IsActive != nil {
		p.IsActive = *params.IsActive
	}
	return p, nil
}

func (r *memPublisherRepo) Delete(ctx context.Context, id string) error {
	delete(r.publishers, id)
	return nil
}

func (r *memPublisherRepo) Count(ctx context.Context) (int, error) {
	return len(r.publishers), nil
}
