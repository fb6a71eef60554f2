package profile

import (
	"context"
	"log/slog"

	"storefront/internal/domain"
	"storefront/internal/keyedmutex"
)

// AddressPatch applies only fields that are explicitly set: nil leaves the
// stored value unchanged, a pointer to the zero value clears it.
type AddressPatch struct {
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Postcode    *string `json:"postcode"`
	Email       *string `json:"email"`
	Phonenumber *string `json:"phonenumber"`
}

// PersonPatch has the same set-ness semantics as AddressPatch.
type PersonPatch struct {
	Firstname   *string `json:"firstname"`
	Lastname    *string `json:"lastname"`
	CompanyName *string `json:"company_name"`
}

// Service implements the address and person operations over whichever stores
// the identity resolver bound.
type Service struct {
	log   *slog.Logger
	locks *keyedmutex.KeyedMutex
}

func NewService(log *slog.Logger, locks *keyedmutex.KeyedMutex) *Service {
	return &Service{log: log, locks: locks}
}

func (s *Service) GetAddress(ctx context.Context, st AddressStore) (*domain.Address, error) {
	return st.Get(ctx)
}

func (s *Service) CreateAddress(ctx context.Context, st AddressStore, a domain.Address) (*domain.Address, error) {
	if a.Email == "" || a.Phonenumber == "" {
		return nil, domain.ValidationFailed("email and phonenumber are required")
	}

	unlock := s.locks.Lock(st.Key())
	defer unlock()

	if err := st.Create(ctx, &a); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "address created", "identity", st.Key())
	return &a, nil
}

// EditAddress replaces the whole record.
func (s *Service) EditAddress(ctx context.Context, st AddressStore, a domain.Address) (*domain.Address, error) {
	unlock := s.locks.Lock(st.Key())
	defer unlock()

	if err := st.Update(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// EditAddressPartial applies only the fields the patch sets.
func (s *Service) EditAddressPartial(ctx context.Context, st AddressStore, patch AddressPatch) (*domain.Address, error) {
	unlock := s.locks.Lock(st.Key())
	defer unlock()

	a, err := st.Get(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Address != nil {
		a.Address = *patch.Address
	}
	if patch.City != nil {
		a.City = *patch.City
	}
	if patch.Postcode != nil {
		a.Postcode = *patch.Postcode
	}
	if patch.Email != nil {
		a.Email = *patch.Email
	}
	if patch.Phonenumber != nil {
		a.Phonenumber = *patch.Phonenumber
	}
	if err := st.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAddress(ctx context.Context, st AddressStore) error {
	unlock := s.locks.Lock(st.Key())
	defer unlock()
	return st.Delete(ctx)
}

func (s *Service) GetPerson(ctx context.Context, st PersonStore) (*domain.Person, error) {
	return st.Get(ctx)
}

func (s *Service) CreatePerson(ctx context.Context, st PersonStore, p domain.Person) (*domain.Person, error) {
	if p.Firstname == "" || p.Lastname == "" {
		return nil, domain.ValidationFailed("firstname and lastname are required")
	}

	unlock := s.locks.Lock(st.Key())
	defer unlock()

	if err := st.Create(ctx, &p); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "person created", "identity", st.Key())
	return &p, nil
}

func (s *Service) EditPerson(ctx context.Context, st PersonStore, p domain.Person) (*domain.Person, error) {
	unlock := s.locks.Lock(st.Key())
	defer unlock()

	if err := st.Update(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) EditPersonPartial(ctx context.Context, st PersonStore, patch PersonPatch) (*domain.Person, error) {
	unlock := s.locks.Lock(st.Key())
	defer unlock()

	p, err := st.Get(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Firstname != nil {
		p.Firstname = *patch.Firstname
	}
	if patch.Lastname != nil {
		p.Lastname = *patch.Lastname
	}
	if patch.CompanyName != nil {
		p.CompanyName = *patch.CompanyName
	}
	if err := st.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePerson(ctx context.Context, st PersonStore) error {
	unlock := s.locks.Lock(st.Key())
	defer unlock()
	return st.Delete(ctx)
}
