package data

// UnknownName is used for address book rows without a Name column value.
const UnknownName = "Unknown"

// OwnWalletName labels the operating wallet in balance reports.
const OwnWalletName = "Our Wallet"

// Recipient is one address book entry. Balance fields stay empty until a
// lookup succeeds.
type Recipient struct {
	Address       string
	Name          string
	NativeBalance string
	TokenBalance  string
}

func (r Recipient) String() string {
	return r.Name + ": " + r.Address
}
