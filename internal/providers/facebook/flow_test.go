package facebook

import (
	"context"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-facebook/internal/store/memory"
	"github.com/dropDatabas3/hellojohn-facebook/internal/validation"
)

func TestUserData_CachedPerAttempt(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "999", []string{"email"}, jane())
	f.graph.addUser("AT2", "1000", []string{"email"}, jane())
	flow := NewAuthorizationFlow(f.api, FlowOptions{})

	tok := NewToken("AT1")
	d1, err := flow.UserData(context.Background(), tok)
	require.NoError(t, err)
	d2, err := flow.UserData(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, d1.Raw, d2.Raw)
	assert.Equal(t, "Jane", d2.Get("first_name").String())

	_, _, _, me := f.graph.calls()
	assert.Equal(t, 1, me)

	_, err = flow.UserData(context.Background(), NewToken("AT2"))
	require.NoError(t, err)
	_, _, _, me = f.graph.calls()
	assert.Equal(t, 2, me)

	// A new attempt with the same access token fetches again.
	_, err = flow.UserData(context.Background(), NewToken("AT1"))
	require.NoError(t, err)
	_, _, _, me = f.graph.calls()
	assert.Equal(t, 3, me)
}

func TestUserData_FieldsReadOnEveryCall(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "999", []string{"email"}, jane())

	var fields atomic.Value
	fields.Store([]string{"first_name", "email"})
	flow := NewAuthorizationFlow(f.api, FlowOptions{Fields: func() []string { return fields.Load().([]string) }})

	_, err := flow.UserData(context.Background(), NewToken("AT1"))
	require.NoError(t, err)
	q, err := url.ParseQuery(f.graph.lastMeQuery)
	require.NoError(t, err)
	assert.Equal(t, "first_name,email", q.Get("fields"))

	fields.Store([]string{"first_name", "last_name", "birthday"})
	_, err = flow.UserData(context.Background(), NewToken("AT1"))
	require.NoError(t, err)
	q, err = url.ParseQuery(f.graph.lastMeQuery)
	require.NoError(t, err)
	assert.Equal(t, "first_name,last_name,birthday", q.Get("fields"))
}

func TestUserData_Non200IsProtocolError(t *testing.T) {
	f := newFixture(t)
	flow := NewAuthorizationFlow(f.api, FlowOptions{})

	_, err := flow.UserData(context.Background(), NewToken("unknown"))
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
}

func TestCreateProfile_RequiresAttachedAccount(t *testing.T) {
	f := newFixture(t)
	flow := NewAuthorizationFlow(f.api, FlowOptions{})
	st := memory.New()

	err := flow.CreateProfileAndAttachToAccountFor(context.Background(), st.NewUnitOfWork(), NewToken("AT1"))
	require.Error(t, err)
	_, _, _, me := f.graph.calls()
	assert.Zero(t, me)
}

func TestCreateProfile_ValidationFailureStagesNothing(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "999", []string{"email"}, map[string]any{"first_name": "Jane", "last_name": "Doe", "email": "not-an-email"})
	flow := NewAuthorizationFlow(f.api, FlowOptions{Rules: validation.ProfileRules{
		Required: []string{validation.FieldEmail},
	}})
	st := memory.New()

	tok := NewToken("AT1")
	acc := &repository.Account{ID: "a1", AccountIdentifier: "999", AuthenticationProviderName: DefaultProviderName}
	tok.SetAccount(acc)
	uow := st.NewUnitOfWork()
	uow.AddAccount(acc)

	err := flow.CreateProfileAndAttachToAccountFor(context.Background(), uow, tok)
	require.ErrorIs(t, err, ErrInvalidProfileData)
	assert.Equal(t, 1, uow.Pending())
	assert.Empty(t, acc.ProfileID)
}

func TestCreateProfile_CommitsAccountAndProfileTogether(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "999", []string{"email"}, jane())
	flow := NewAuthorizationFlow(f.api, FlowOptions{})
	st := memory.New()

	tok := NewToken("AT1")
	acc := &repository.Account{ID: "a1", AccountIdentifier: "999", AuthenticationProviderName: DefaultProviderName}
	tok.SetAccount(acc)
	uow := st.NewUnitOfWork()
	uow.AddAccount(acc)

	require.NoError(t, flow.CreateProfileAndAttachToAccountFor(context.Background(), uow, tok))
	assert.Zero(t, uow.Pending())

	stored, err := st.Accounts().Get(context.Background(), "a1")
	require.NoError(t, err)
	require.NotEmpty(t, stored.ProfileID)
	p, err := st.Profiles().Get(context.Background(), stored.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.Name.FullName())
}
