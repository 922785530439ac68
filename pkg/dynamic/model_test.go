package dynamic

import (
	"context"
	"errors"
	"testing"

	"github.com/patinthehat/dynrel/pkg/registry"
	"github.com/patinthehat/dynrel/pkg/relation"
	"github.com/patinthehat/dynrel/pkg/relation/relationtest"
	"github.com/patinthehat/dynrel/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test entities

type User struct {
	ID   int    `po:"id,primaryKey,serial"`
	Name string `po:"name,varchar(100),notNull"`
}

type Post struct {
	ID     int    `po:"id,primaryKey,serial"`
	Title  string `po:"title,varchar(255),notNull"`
	UserID int    `po:"user_id,integer,notNull"`
}

type Profile struct {
	ID     int    `po:"id,primaryKey,serial"`
	Bio    string `po:"bio,text"`
	UserID int    `po:"user_id,integer,notNull"`
}

type Language struct {
	ID     int    `po:"id,primaryKey,serial"`
	Code   string `po:"code,varchar(8),notNull"`
	UserID int    `po:"user_id,integer,notNull"`
}

type Role struct {
	ID   int    `po:"id,primaryKey,serial"`
	Name string `po:"name,varchar(50),notNull"`
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry()
	for identifier, model := range map[string]any{
		"models.User":     User{},
		"models.Post":     Post{},
		"models.Profile":  Profile{},
		"models.Language": Language{},
		"models.Role":     Role{},
	} {
		require.NoError(t, reg.RegisterAs(identifier, model))
	}
	return reg
}

func userConfig() Config {
	return Config{
		Relations: []string{"posts", "profile", "roles", "author", "user_languages"},
		Kinds: map[string]schema.RelationType{
			"profile":        schema.HasOne,
			"roles":          schema.ManyToMany,
			"author":         schema.BelongsTo,
			"user_languages": schema.HasOne,
			"languages":      schema.HasMany,
		},
		Targets: map[string]string{
			"author":         "models.User",
			"user_languages": "models.Language",
		},
		Keys: map[string]string{
			"user_languages": "user_id",
		},
		Renames: map[string]string{
			"languages": "user_languages",
		},
		Namespace: "models",
	}
}

func testModel(t *testing.T, db relation.Queryer) *Model {
	t.Helper()

	m := NewModel("User", userConfig()).
		WithDB(db).
		WithRegistry(testRegistry(t))
	m.SetAttribute("id", 7)
	return m
}

func TestGet_DynamicHasMany(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM posts",
		[]string{"id", "title", "user_id"},
		[]any{1, "first", 7},
		[]any{2, "second", 7},
	)

	m := testModel(t, db)

	out, err := m.Get(context.Background(), "posts")
	require.NoError(t, err)

	posts, ok := out.([]*Post)
	require.True(t, ok, "expected []*Post, got %T", out)
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0].Title)

	q := db.LastQuery()
	assert.Equal(t, "SELECT * FROM posts WHERE user_id = $1", q.SQL)
	assert.Equal(t, []any{7}, q.Args)
}

func TestGet_MatchesDirectConstruction(t *testing.T) {
	stub := func() *relationtest.Queryer {
		db := relationtest.NewQueryer()
		db.Stub("FROM posts",
			[]string{"id", "title", "user_id"},
			[]any{1, "first", 7},
		)
		return db
	}

	dynamicModel := testModel(t, stub())
	viaProperty, err := dynamicModel.Get(context.Background(), "posts")
	require.NoError(t, err)

	directModel := testModel(t, stub())
	rel, err := directModel.HasMany("models.Post", "user_id")
	require.NoError(t, err)
	viaMethod, err := rel.Results(context.Background())
	require.NoError(t, err)

	assert.Equal(t, viaMethod, viaProperty)
}

func TestGet_CachesFirstResult(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM posts",
		[]string{"id", "title", "user_id"},
		[]any{1, "first", 7},
	)

	m := testModel(t, db)
	ctx := context.Background()

	first, err := m.Get(ctx, "posts")
	require.NoError(t, err)
	require.True(t, m.RelationLoaded("posts"))

	second, err := m.Get(ctx, "posts")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, db.CallCount("FROM posts"), "relationship must not be re-invoked on repeat reads")
}

func TestGet_DynamicHasOne(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM profiles",
		[]string{"id", "bio", "user_id"},
		[]any{3, "hello", 7},
	)

	m := testModel(t, db)

	out, err := m.Get(context.Background(), "profile")
	require.NoError(t, err)

	profile, ok := out.(*Profile)
	require.True(t, ok, "expected *Profile, got %T", out)
	assert.Equal(t, "hello", profile.Bio)
}

func TestGet_DynamicBelongsTo(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM users",
		[]string{"id", "name"},
		[]any{1, "owner"},
	)

	m := testModel(t, db)
	m.SetAttribute("user_id", 1)

	out, err := m.Get(context.Background(), "author")
	require.NoError(t, err)

	author, ok := out.(*User)
	require.True(t, ok, "expected *User, got %T", out)
	assert.Equal(t, "owner", author.Name)

	assert.Equal(t, "SELECT * FROM users WHERE id = $1 LIMIT 1", db.LastQuery().SQL)
}

func TestGet_DynamicManyToMany(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("INNER JOIN roles_users",
		[]string{"id", "name"},
		[]any{1, "admin"},
	)

	m := testModel(t, db)

	out, err := m.Get(context.Background(), "roles")
	require.NoError(t, err)

	roles, ok := out.([]*Role)
	require.True(t, ok, "expected []*Role, got %T", out)
	require.Len(t, roles, 1)
	assert.Equal(t, "admin", roles[0].Name)

	q := db.LastQuery()
	assert.Equal(t,
		"SELECT t.* FROM roles t INNER JOIN roles_users j ON t.id = j.role_id WHERE j.user_id = $1",
		q.SQL)
}

func TestGet_AliasDispatch(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM languages",
		[]string{"id", "code", "user_id"},
		[]any{1, "en", 7},
		[]any{2, "lt", 7},
	)

	m := testModel(t, db)

	// "languages" is only an alias: target and key come from the canonical
	// "user_languages" entry, while the kind override is looked up under the
	// requested name itself (hasMany here, hasOne under the canonical name).
	out, err := m.Get(context.Background(), "languages")
	require.NoError(t, err)

	languages, ok := out.([]*Language)
	require.True(t, ok, "expected []*Language, got %T", out)
	require.Len(t, languages, 2)

	q := db.LastQuery()
	assert.Equal(t, "SELECT * FROM languages WHERE user_id = $1", q.SQL)

	// The value is cached under the requested name.
	assert.True(t, m.RelationLoaded("languages"))
	assert.False(t, m.RelationLoaded("user_languages"))
}

func TestGet_CanonicalNameKeepsOwnKind(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM languages",
		[]string{"id", "code", "user_id"},
		[]any{1, "en", 7},
	)

	m := testModel(t, db)

	out, err := m.Get(context.Background(), "user_languages")
	require.NoError(t, err)

	_, ok := out.(*Language)
	assert.True(t, ok, "expected *Language via hasOne, got %T", out)
}

func TestGet_AttributeFallback(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())
	m.SetAttribute("name", "Ada")

	out, err := m.Get(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", out)
}

func TestGet_AbsentName(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())

	out, err := m.Get(context.Background(), "does_not_exist")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestGet_DefinedRelationMethod(t *testing.T) {
	db := relationtest.NewQueryer()
	db.Stub("FROM posts",
		[]string{"id", "title", "user_id"},
		[]any{5, "featured", 7},
	)

	m := testModel(t, db)
	m.DefineRelation("featured", func(ctx context.Context, m *Model) (any, error) {
		return m.HasMany("models.Post", "user_id")
	})

	out, err := m.Get(context.Background(), "featured")
	require.NoError(t, err)

	posts, ok := out.([]*Post)
	require.True(t, ok)
	require.Len(t, posts, 1)
	assert.Equal(t, "featured", posts[0].Title)
	assert.True(t, m.RelationLoaded("featured"))
}

func TestGet_InvalidRelationshipContract(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())
	m.DefineRelation("bogus", func(ctx context.Context, m *Model) (any, error) {
		return "not a relation", nil
	})

	_, err := m.Get(context.Background(), "bogus")
	require.Error(t, err)
	assert.True(t, IsInvalidRelationship(err))
	assert.True(t, errors.Is(err, ErrInvalidRelationship))

	var contractErr *InvalidRelationshipError
	require.ErrorAs(t, err, &contractErr)
	assert.Equal(t, "bogus", contractErr.Name)
}

func TestDynamicRelation_ReturnsDescriptor(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())

	out, err := m.DynamicRelation(context.Background(), "posts")
	require.NoError(t, err)

	rel, ok := out.(relation.Relation)
	require.True(t, ok, "expected a relation descriptor, got %T", out)
	assert.Equal(t, schema.HasMany, rel.Kind())
}

func TestDynamicRelation_NotFound(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())

	_, err := m.DynamicRelation(context.Background(), "nothing_here")
	require.Error(t, err)
	assert.True(t, IsRelationNotFound(err))
	assert.True(t, errors.Is(err, ErrRelationNotFound))

	var notFound *RelationNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nothing_here", notFound.Name)
	assert.Equal(t, "User", notFound.Model)
}

func TestDynamicRelation_CachedNonDynamic(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())
	m.SetRelation("custom", []string{"cached"})

	out, err := m.DynamicRelation(context.Background(), "custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"cached"}, out)
}

func TestDynamicRelation_UnregisteredTarget(t *testing.T) {
	cfg := userConfig()
	cfg.Relations = append(cfg.Relations, "gadgets")

	m := NewModel("User", cfg).
		WithDB(relationtest.NewQueryer()).
		WithRegistry(testRegistry(t))
	m.SetAttribute("id", 7)

	// "gadgets" derives target "models.Gadget", which nothing registered;
	// the registry's error is surfaced as-is.
	_, err := m.DynamicRelation(context.Background(), "gadgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models.Gadget")
}

func TestCall_IntrospectionHelpers(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())
	ctx := context.Background()

	names, err := m.Call(ctx, "dynamicRelations")
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"posts", "profile", "roles", "author", "user_languages"},
		names)

	yes, err := m.Call(ctx, "isDynamicRelation", "posts")
	require.NoError(t, err)
	assert.Equal(t, true, yes)

	no, err := m.Call(ctx, "isDynamicRelation", "nothing")
	require.NoError(t, err)
	assert.Equal(t, false, no)

	_, err = m.Call(ctx, "isDynamicRelation")
	require.Error(t, err)
}

func TestCall_DynamicName(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())

	out, err := m.Call(context.Background(), "posts")
	require.NoError(t, err)

	_, ok := out.(relation.Relation)
	assert.True(t, ok, "expected a relation descriptor, got %T", out)
}

func TestCall_DefinedMethod(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())
	m.DefineRelation("custom", func(ctx context.Context, m *Model) (any, error) {
		return m.HasMany("models.Post", "user_id")
	})

	out, err := m.Call(context.Background(), "custom")
	require.NoError(t, err)

	_, ok := out.(relation.Relation)
	assert.True(t, ok)
}

func TestCall_MethodNotFound(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())

	_, err := m.Call(context.Background(), "undefinedMethod")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMethodNotFound))
}

func TestFill(t *testing.T) {
	m := testModel(t, relationtest.NewQueryer())
	m.Fill(map[string]any{"name": "Ada", "email": "ada@example.com"})

	name, ok := m.Attribute("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", name)

	email, ok := m.Attribute("email")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", email)
}
