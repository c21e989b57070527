package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// Kind labels what a record at an address holds.
type Kind string

const (
	KindWallet     Kind = "wallet"
	KindProfile    Kind = "profile"
	KindBounty     Kind = "bounty"
	KindEscrow     Kind = "escrow"
	KindSubmission Kind = "submission"
)

// Capacity of each bounded string field, in bytes.
const (
	MaxUsernameLen    = 32
	MaxEmailLen       = 64
	MaxTitleLen       = 64
	MaxDescriptionLen = 256
	MaxLocationLen    = 64
	MaxLinkLen        = 256
)

type BountyStatus uint8

const (
	StatusOpen BountyStatus = iota
	StatusClaimed
	StatusCompleted
)

func (s BountyStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClaimed:
		return "claimed"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// ParseBountyStatus maps the text form back; ok is false for anything else.
func ParseBountyStatus(s string) (BountyStatus, bool) {
	switch strings.ToLower(s) {
	case "open":
		return StatusOpen, true
	case "claimed":
		return StatusClaimed, true
	case "completed":
		return StatusCompleted, true
	}
	return 0, false
}

// Each record kind is prefixed by an 8-byte discriminator so record kinds
// sharing the address space can never be confused for one another.
func discriminator(name string) []byte {
	h := sha256.Sum256([]byte("account:" + name))
	return h[:8]
}

var (
	profileDisc    = discriminator("Profile")
	bountyDisc     = discriminator("Bounty")
	submissionDisc = discriminator("Submission")
)

// Profile is the one-per-identity record of role flags and statistics.
type Profile struct {
	Owner                     Address
	Username                  string
	Email                     string
	Avatar                    string
	IsHunter                  bool
	IsClient                  bool
	BountiesCompleted         uint64
	BountiesApplied           uint64
	TotalSolEarned            uint64
	SuccessRate               float64
	BountiesPosted            uint64
	TotalSolSpent             uint64
	BountiesCompletedAsClient uint64
	BountiesRewarded          uint64
	Bump                      uint8
}

func (p *Profile) Encode() []byte {
	w := newRecordWriter(profileDisc)
	w.addr(p.Owner)
	w.str(p.Username)
	w.str(p.Email)
	w.str(p.Avatar)
	w.boolean(p.IsHunter)
	w.boolean(p.IsClient)
	w.u64(p.BountiesCompleted)
	w.u64(p.BountiesApplied)
	w.u64(p.TotalSolEarned)
	w.f64(p.SuccessRate)
	w.u64(p.BountiesPosted)
	w.u64(p.TotalSolSpent)
	w.u64(p.BountiesCompletedAsClient)
	w.u64(p.BountiesRewarded)
	w.u8(p.Bump)
	return w.bytes()
}

func DecodeProfile(data []byte) (*Profile, error) {
	r, err := newRecordReader(data, profileDisc)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		Owner:    r.addr(),
		Username: r.str(),
		Email:    r.str(),
		Avatar:   r.str(),
		IsHunter: r.boolean(),
		IsClient: r.boolean(),
	}
	p.BountiesCompleted = r.u64()
	p.BountiesApplied = r.u64()
	p.TotalSolEarned = r.u64()
	p.SuccessRate = r.f64()
	p.BountiesPosted = r.u64()
	p.TotalSolSpent = r.u64()
	p.BountiesCompletedAsClient = r.u64()
	p.BountiesRewarded = r.u64()
	p.Bump = r.u8()
	if err := r.done(); err != nil {
		return nil, err
	}
	return p, nil
}

// Bounty is a posted task with an escrowed reward.
type Bounty struct {
	Creator     Address
	Title       string
	Description string
	Reward      uint64
	Location    string
	TimeLimit   int64
	Status      BountyStatus
	Hunter      *Address
	CreatedAt   int64
	Bump        uint8
}

func (b *Bounty) Encode() []byte {
	w := newRecordWriter(bountyDisc)
	w.addr(b.Creator)
	w.str(b.Title)
	w.str(b.Description)
	w.u64(b.Reward)
	w.str(b.Location)
	w.i64(b.TimeLimit)
	w.u8(uint8(b.Status))
	w.optAddr(b.Hunter)
	w.i64(b.CreatedAt)
	w.u8(b.Bump)
	return w.bytes()
}

func DecodeBounty(data []byte) (*Bounty, error) {
	r, err := newRecordReader(data, bountyDisc)
	if err != nil {
		return nil, err
	}
	b := &Bounty{
		Creator:     r.addr(),
		Title:       r.str(),
		Description: r.str(),
		Reward:      r.u64(),
		Location:    r.str(),
		TimeLimit:   r.i64(),
		Status:      BountyStatus(r.u8()),
		Hunter:      r.optAddr(),
		CreatedAt:   r.i64(),
		Bump:        r.u8(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return b, nil
}

// Submission is a hunter's recorded work product for a claimed bounty.
type Submission struct {
	Bounty      Address
	Hunter      Address
	Link        string
	SubmittedAt int64
	Selected    bool
}

func (s *Submission) Encode() []byte {
	w := newRecordWriter(submissionDisc)
	w.addr(s.Bounty)
	w.addr(s.Hunter)
	w.str(s.Link)
	w.i64(s.SubmittedAt)
	w.boolean(s.Selected)
	return w.bytes()
}

func DecodeSubmission(data []byte) (*Submission, error) {
	r, err := newRecordReader(data, submissionDisc)
	if err != nil {
		return nil, err
	}
	s := &Submission{
		Bounty:      r.addr(),
		Hunter:      r.addr(),
		Link:        r.str(),
		SubmittedAt: r.i64(),
		Selected:    r.boolean(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return s, nil
}

// deriveAvatar builds the avatar initials from a username: first letter of
// each word when the name has spaces, otherwise the first two characters.
func deriveAvatar(username string) string {
	trimmed := strings.TrimSpace(username)
	if strings.Contains(trimmed, " ") {
		var b strings.Builder
		for _, word := range strings.Fields(trimmed) {
			b.WriteRune([]rune(word)[0])
		}
		return b.String()
	}
	runes := []rune(trimmed)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

// --- record codec ---
//
// Little-endian fixed-width ints, u32 length-prefixed strings, one tag byte
// for optional addresses. The discriminator leads every record.

type recordWriter struct {
	buf bytes.Buffer
}

func newRecordWriter(disc []byte) *recordWriter {
	w := &recordWriter{}
	w.buf.Write(disc)
	return w
}

func (w *recordWriter) bytes() []byte { return w.buf.Bytes() }

func (w *recordWriter) u8(v uint8) { w.buf.WriteByte(v) }

func (w *recordWriter) boolean(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *recordWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *recordWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *recordWriter) i64(v int64) { w.u64(uint64(v)) }

func (w *recordWriter) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *recordWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *recordWriter) addr(a Address) { w.buf.Write(a[:]) }

func (w *recordWriter) optAddr(a *Address) {
	if a == nil {
		w.buf.WriteByte(0)
		return
	}
	w.buf.WriteByte(1)
	w.addr(*a)
}

type recordReader struct {
	data []byte
	off  int
	bad  bool
}

func newRecordReader(data []byte, disc []byte) (*recordReader, error) {
	if len(data) < len(disc) || !bytes.Equal(data[:len(disc)], disc) {
		return nil, ErrWrongAccountKind
	}
	return &recordReader{data: data, off: len(disc)}, nil
}

func (r *recordReader) take(n int) []byte {
	if r.bad || n < 0 || r.off+n > len(r.data) {
		r.bad = true
		// Cap the placeholder so a corrupt length prefix cannot force a
		// huge allocation; fixed-width reads never ask for more than 32.
		if n < 0 || n > 64 {
			n = 64
		}
		return make([]byte, n)
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out
}

func (r *recordReader) u8() uint8 { return r.take(1)[0] }

func (r *recordReader) boolean() bool { return r.u8() != 0 }

func (r *recordReader) u32() uint32 { return binary.LittleEndian.Uint32(r.take(4)) }

func (r *recordReader) u64() uint64 { return binary.LittleEndian.Uint64(r.take(8)) }

func (r *recordReader) i64() int64 { return int64(r.u64()) }

func (r *recordReader) f64() float64 { return math.Float64frombits(r.u64()) }

func (r *recordReader) str() string { return string(r.take(int(r.u32()))) }

func (r *recordReader) addr() Address {
	var a Address
	copy(a[:], r.take(AddressLen))
	return a
}

func (r *recordReader) optAddr() *Address {
	if r.u8() == 0 {
		return nil
	}
	a := r.addr()
	return &a
}

func (r *recordReader) done() error {
	if r.bad || r.off != len(r.data) {
		return ErrWrongAccountKind
	}
	return nil
}
