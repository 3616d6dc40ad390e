// Package tests holds fixtures shared by the package tests: well-known
// addresses and mnemonics, and an in-memory chain backend.
package tests

const (
	TestAddr1 = "0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0"
	TestAddr2 = "0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b"
	TestAddr3 = "0xE11BA2b4D45Eaed5996Cd0823791E0C93114882d"
	TestAddr4 = "0xd03ea8624C8C5987235048901fB614fDcA89b117"

	FilecoinIDAddr100   = "f0100"
	MaskedIDAddr100     = "0xff00000000000000000000000000000000000064"
	TokenContractAddr   = "0xe78A0F7E598Cc8b0Bb87894B0F60dD2a88d6a8Ab"
	InvalidAddr         = "0x1234"
	BadChecksumTestAddr = "0xFFcf8FDEE72ac11b5c542428B35EEF5769C409F0"

	// TestMnemonic is the development phrase shipped with most local nodes.
	TestMnemonic      = "test test test test test test test test test test test junk"
	TestMnemonicAddr  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	TestMnemonicAddr1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	AbandonMnemonic     = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	AbandonMnemonicAddr = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
)

// Directory is a small address book in the export format of the team sheet.
const Directory = `Name,Role,Address
Alice Smith,core,` + TestAddr1 + `
Bob Jones,ops,` + TestAddr2 + `
Alicia Keys,research,` + TestAddr3 + `
Mallory,guest,` + InvalidAddr + `
Nobody,guest,
`
