package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validAddress() Address {
	return Address{
		Name:    "Priya S",
		Phone:   "9876543210",
		Line1:   "12 Rose Street",
		City:    "Chennai",
		State:   "TN",
		Pincode: "600001",
	}
}

func TestAddressValidate(t *testing.T) {
	a := validAddress()
	require.NoError(t, a.Validate())
}

func TestAddressValidate_MissingFields(t *testing.T) {
	mutations := map[string]func(*Address){
		"name":  func(a *Address) { a.Name = "  " },
		"line1": func(a *Address) { a.Line1 = "" },
		"city":  func(a *Address) { a.City = "" },
		"state": func(a *Address) { a.State = "" },
	}
	for name, mutate := range mutations {
		a := validAddress()
		mutate(&a)
		require.ErrorIs(t, a.Validate(), ErrInvalidAddress, "missing %s", name)
	}
}

func TestAddressValidate_Phone(t *testing.T) {
	a := validAddress()
	a.Phone = "12345"
	require.ErrorIs(t, a.Validate(), ErrInvalidAddress)

	a.Phone = "1234567890123456"
	require.ErrorIs(t, a.Validate(), ErrInvalidAddress)

	a.Phone = "+919876543210"
	require.NoError(t, a.Validate())
}

func TestAddressValidate_Pincode(t *testing.T) {
	a := validAddress()
	a.Pincode = "60001"
	require.ErrorIs(t, a.Validate(), ErrInvalidAddress)

	a.Pincode = "6000012"
	require.ErrorIs(t, a.Validate(), ErrInvalidAddress)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("rose-petal-42")
	require.NoError(t, err)

	u := User{PasswordHash: hash}
	require.True(t, u.CheckPassword("rose-petal-42"))
	require.False(t, u.CheckPassword("thorn-stem-42"))
}
