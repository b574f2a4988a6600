package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/solana/shortvec"
)

// versionPrefixMask marks a versioned message in the first message byte.
const versionPrefixMask = 0x80

// ToBase58 encodes the transaction in the form expected by sendTransaction.
func (t Transaction) ToBase58() string {
	return base58.Encode(t.Marshal())
}

// Marshal encodes the transaction as its signatures followed by the message.
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	writeLen(&b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

// Marshal encodes the message. These are the bytes each signer signs.
func (m Message) Marshal() []byte {
	var b bytes.Buffer

	b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	writeLen(&b, len(m.Accounts))
	for _, a := range m.Accounts {
		b.Write(a)
	}

	b.Write(m.RecentBlockhash[:])

	writeLen(&b, len(m.Instructions))
	for _, i := range m.Instructions {
		b.WriteByte(i.ProgramIndex)
		writeLen(&b, len(i.Accounts))
		b.Write(i.Accounts)
		writeLen(&b, len(i.Data))
		b.Write(i.Data)
	}

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	count, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, count)
	for i := range t.Signatures {
		if _, err := io.ReadFull(r, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	rest, _ := io.ReadAll(r)
	return t.Message.Unmarshal(rest)
}

// Unmarshal decodes a legacy message. Versioned messages are rejected, as are
// instructions that index past the account list.
func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&versionPrefixMask != 0 {
		return errors.New("versioned messages not supported")
	}

	r := bytes.NewReader(b)

	var header [3]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	accountCount, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	m.Accounts = make([]ed25519.PublicKey, accountCount)
	for i := range m.Accounts {
		m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		if _, err := io.ReadFull(r, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err := io.ReadFull(r, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent blockhash")
	}

	instructionCount, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]CompiledInstruction, instructionCount)
	for i := range m.Instructions {
		if err := m.Instructions[i].unmarshal(r, len(m.Accounts)); err != nil {
			return errors.Wrapf(err, "invalid instruction %d", i)
		}
	}

	return nil
}

func (c *CompiledInstruction) unmarshal(r *bytes.Reader, accountCount int) error {
	programIndex, err := r.ReadByte()
	if err != nil {
		return errors.Wrap(err, "failed to read program index")
	}
	if int(programIndex) >= accountCount {
		return errors.Errorf("program index %d out of range", programIndex)
	}
	c.ProgramIndex = programIndex

	if c.Accounts, err = readLenPrefixed(r); err != nil {
		return errors.Wrap(err, "failed to read account indexes")
	}
	for _, index := range c.Accounts {
		if int(index) >= accountCount {
			return errors.Errorf("account index %d out of range", index)
		}
	}

	if c.Data, err = readLenPrefixed(r); err != nil {
		return errors.Wrap(err, "failed to read data")
	}
	return nil
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	n, err := shortvec.DecodeLen(r)
	if err != nil {
		return nil, err
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Lengths are bounded by MaxTransactionSize, so encoding can't fail.
func writeLen(b *bytes.Buffer, n int) {
	_, _ = shortvec.EncodeLen(b, n)
}
