package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"storefront-service/models"
	"storefront-service/repository"
	"storefront-service/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory repositories ---

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindAll(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) set(id primitive.ObjectID, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memUsers) SetCart(_ context.Context, userID, cartID primitive.ObjectID) error {
	return m.set(userID, func(u *models.User) { u.Cart = &cartID })
}

func (m *memUsers) UnsetCart(_ context.Context, userID primitive.ObjectID) error {
	return m.set(userID, func(u *models.User) { u.Cart = nil })
}

func (m *memUsers) SetWishlist(_ context.Context, userID, wishlistID primitive.ObjectID) error {
	return m.set(userID, func(u *models.User) { u.Wishlist = &wishlistID })
}

func (m *memUsers) UnsetWishlist(_ context.Context, userID primitive.ObjectID) error {
	return m.set(userID, func(u *models.User) { u.Wishlist = nil })
}

type memProducts struct {
	mu        sync.Mutex
	products  map[primitive.ObjectID]*models.Product
	order     []primitive.ObjectID
	createErr error
}

func newMemProducts(products ...*models.Product) *memProducts {
	m := &memProducts{products: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	return m
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.products[id]
	return ok, nil
}

func (m *memProducts) matching(filter repository.ProductFilter) []models.Product {
	out := []models.Product{}
	for _, id := range m.order {
		p := m.products[id]
		if filter.CategoryID != nil && !containsID(p.CategoryIDs, *filter.CategoryID) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func (m *memProducts) Find(_ context.Context, filter repository.ProductFilter, skip, limit int64) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if skip < 0 {
		return nil, errors.New("skip value must be non-negative")
	}
	all := m.matching(filter)
	if skip >= int64(len(all)) {
		return []models.Product{}, nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (m *memProducts) Count(_ context.Context, filter repository.ProductFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = primitive.NewObjectID()
	cp := *p
	m.products[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memProducts) Update(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

type memCategories struct {
	mu            sync.Mutex
	categories    map[primitive.ObjectID]*models.Category
	subcategories map[primitive.ObjectID]*models.Subcategory
}

func newMemCategories(categories ...*models.Category) *memCategories {
	m := &memCategories{
		categories:    map[primitive.ObjectID]*models.Category{},
		subcategories: map[primitive.ObjectID]*models.Subcategory{},
	}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *memCategories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Category{}
	for _, id := range ids {
		if c, ok := m.categories[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCategories) find(match func(string) bool) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if match(c.Name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	return m.find(func(n string) bool { return n == name })
}

func (m *memCategories) FindByNameFold(_ context.Context, name string) (*models.Category, error) {
	return m.find(func(n string) bool { return strings.EqualFold(n, name) })
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	if c.Subcategories == nil {
		c.Subcategories = []primitive.ObjectID{}
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCategories) ListWithSubcategories(_ context.Context) ([]models.CategoryListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CategoryListing{}
	for _, c := range m.categories {
		l := models.CategoryListing{ID: c.ID, Name: c.Name, Subcategories: []models.SubcategoryRef{}}
		for _, sid := range c.Subcategories {
			if s, ok := m.subcategories[sid]; ok {
				l.Subcategories = append(l.Subcategories, models.SubcategoryRef{ID: s.ID, Name: s.Name})
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memCategories) FindSubcategories(_ context.Context, ids []primitive.ObjectID) ([]models.Subcategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Subcategory{}
	for _, id := range ids {
		if s, ok := m.subcategories[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memCategories) AddSubcategory(_ context.Context, sub *models.Subcategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[sub.CategoryID]
	if !ok {
		return repository.ErrNotFound
	}
	sub.ID = primitive.NewObjectID()
	cp := *sub
	m.subcategories[sub.ID] = &cp
	c.Subcategories = append(c.Subcategories, sub.ID)
	return nil
}

type memCarts struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart // keyed by user id
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[primitive.ObjectID]*models.Cart{}}
}

func (m *memCarts) snapshot(c *models.Cart) *models.Cart {
	cp := *c
	cp.Products = append([]models.CartItem{}, c.Products...)
	return &cp
}

func (m *memCarts) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.snapshot(c), nil
}

func (m *memCarts) AddItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		c = &models.Cart{ID: primitive.NewObjectID(), UserID: userID}
		m.carts[userID] = c
	}
	for i := range c.Products {
		if c.Products[i].ProductID == productID {
			c.Products[i].Quantity += quantity
			return m.snapshot(c), nil
		}
	}
	c.Products = append(c.Products, models.CartItem{ProductID: productID, Quantity: quantity})
	return m.snapshot(c), nil
}

func (m *memCarts) adjust(userID, productID primitive.ObjectID, delta int) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range c.Products {
		if c.Products[i].ProductID == productID {
			if c.Products[i].Quantity+delta >= 1 {
				c.Products[i].Quantity += delta
			}
			return m.snapshot(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCarts) IncrementItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	return m.adjust(userID, productID, 1)
}

func (m *memCarts) DecrementItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	return m.adjust(userID, productID, -1)
}

func (m *memCarts) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range c.Products {
		if c.Products[i].ProductID == productID {
			c.Products = append(c.Products[:i], c.Products[i+1:]...)
			return m.snapshot(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCarts) DeleteIfEmpty(_ context.Context, cartID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, c := range m.carts {
		if c.ID == cartID && len(c.Products) == 0 {
			delete(m.carts, uid)
			return true, nil
		}
	}
	return false, nil
}

type memWishlists struct {
	mu        sync.Mutex
	wishlists map[primitive.ObjectID]*models.Wishlist // keyed by user id
}

func newMemWishlists() *memWishlists {
	return &memWishlists{wishlists: map[primitive.ObjectID]*models.Wishlist{}}
}

func (m *memWishlists) snapshot(w *models.Wishlist) *models.Wishlist {
	cp := *w
	cp.Products = append([]models.WishlistItem{}, w.Products...)
	return &cp
}

func (m *memWishlists) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishlists[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.snapshot(w), nil
}

func (m *memWishlists) AddItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishlists[userID]
	if !ok {
		w = &models.Wishlist{ID: primitive.NewObjectID(), UserID: userID}
		m.wishlists[userID] = w
	}
	for _, item := range w.Products {
		if item.ProductID == productID {
			return nil, repository.ErrDuplicate
		}
	}
	w.Products = append(w.Products, models.WishlistItem{ProductID: productID})
	return m.snapshot(w), nil
}

func (m *memWishlists) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishlists[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i, item := range w.Products {
		if item.ProductID == productID {
			w.Products = append(w.Products[:i], w.Products[i+1:]...)
			return m.snapshot(w), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memWishlists) DeleteIfEmpty(_ context.Context, wishlistID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, w := range m.wishlists {
		if w.ID == wishlistID && len(w.Products) == 0 {
			delete(m.wishlists, uid)
			return true, nil
		}
	}
	return false, nil
}

// --- Collaborator fakes ---

type fakeImageStore struct {
	mu        sync.Mutex
	uploaded  []string
	released  []string
	uploadErr error
}

func (f *fakeImageStore) Upload(_ context.Context, images []services.ImageUpload) ([]services.StoredImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	out := make([]services.StoredImage, 0, len(images))
	for _, img := range images {
		key := "products/" + img.Filename
		f.uploaded = append(f.uploaded, key)
		out = append(out, services.StoredImage{Key: key, URL: "https://cdn.test/" + key})
	}
	return out, nil
}

func (f *fakeImageStore) Release(_ context.Context, keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, keys...)
}

func (f *fakeImageStore) releasedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.released...)
}

type recordedEvent struct {
	eventType string
	productID primitive.ObjectID
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) ProductChanged(_ context.Context, eventType string, p *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{eventType: eventType, productID: p.ID})
}

// --- Helpers ---

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func newUser(name string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: name, Email: strings.ToLower(name) + "@example.com"}
}

func newProduct(name string, categoryIDs ...primitive.ObjectID) *models.Product {
	return &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Price:       100,
		Images:      []string{"https://cdn.test/" + name + ".png"},
		CategoryIDs: categoryIDs,
		Variants:    []models.Variant{{RAM: "8GB", Price: 100, Qty: 3}},
	}
}
