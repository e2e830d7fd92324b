// Package action decodes a single testcase's JSON arguments, dispatches it
// to the matching cryptographic component, and re-encodes the component's
// result into the reply shape spec §6 names for that action. It is
// deliberately thin: every algorithmic decision lives in the component
// packages (gf128, gfpoly, gfpolyfactor, gcm, gcmcrack, paddingoracle,
// batchgcd) this package only wires JSON in and out of them.
package action

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"github.com/kauma/kauma/batchgcd"
	"github.com/kauma/kauma/gcm"
	"github.com/kauma/kauma/gcmcrack"
	"github.com/kauma/kauma/gf128"
	"github.com/kauma/kauma/gfpoly"
	"github.com/kauma/kauma/gfpolyfactor"
	"github.com/kauma/kauma/kerrors"
	"github.com/kauma/kauma/log"
	"github.com/kauma/kauma/paddingoracle"
)

var logger = log.Default().Module("action")

// Testcase is one entry of a batch file: an action name plus its raw,
// action-specific argument object.
type Testcase struct {
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments"`
}

// Batch is a decoded batch file. Testcases is keyed by the testcase's id
// (typically a UUID, but treated as an opaque string).
type Batch struct {
	Testcases map[string]Testcase
}

// ParseBatch decodes either batch shape spec §6 allows: the wrapped
// {"testcases": {id: {...}}, "expectedResults"?: ...} form, or a flat
// {id: {...}} form. expectedResults, when present, is ignored: comparing
// replies against expectations is test-runner logic outside this toolkit.
func ParseBatch(data []byte) (*Batch, error) {
	var wrapped struct {
		Testcases map[string]Testcase `json:"testcases"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Testcases != nil {
		return &Batch{Testcases: wrapped.Testcases}, nil
	}
	var flat map[string]Testcase
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, kerrors.Wrap(kerrors.InputFormat, "parse batch JSON", err)
	}
	return &Batch{Testcases: flat}, nil
}

// Dispatch runs one testcase's action and returns its reply object. Any
// error, including a panic inside a component, is recovered and reported
// back to the caller rather than propagated -- per spec §7, a failed action
// never aborts the batch.
func Dispatch(name string, args json.RawMessage) (reply map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = nil
			err = kerrors.Newf(kerrors.Dispatch, "action %q panicked: %v", name, r)
		}
	}()

	handler, ok := handlers[name]
	if !ok {
		return nil, kerrors.Newf(kerrors.Dispatch, "unknown action %q", name)
	}
	return handler(args)
}

var handlers = map[string]func(json.RawMessage) (map[string]any, error){
	"calc":                 doCalc,
	"gf_mul":               doGFMul,
	"gf_divmod":            doGFDivmod,
	"gf_inv":               doGFInv,
	"gf_div":               doGFDiv,
	"gf_pow":               doGFPow,
	"gf_sqrt":              doGFSqrt,
	"gcm_encrypt":          doGCMEncrypt,
	"gfpoly_add":           doGFPolyAdd,
	"gfpoly_mul":           doGFPolyMul,
	"gfpoly_divmod":        doGFPolyDivmod,
	"gfpoly_gcd":           doGFPolyGcd,
	"gfpoly_monic":         doGFPolyMonic,
	"gfpoly_pow":           doGFPolyPow,
	"gfpoly_powmod":        doGFPolyPowmod,
	"gfpoly_diff":          doGFPolyDiff,
	"gfpoly_sqrt":          doGFPolySqrt,
	"gfpoly_sort":          doGFPolySort,
	"gfpoly_factor_sff":    doGFPolyFactorSFF,
	"gfpoly_factor_ddf":    doGFPolyFactorDDF,
	"gfpoly_factor_edf":    doGFPolyFactorEDF,
	"gcm_crack":            doGCMCrack,
	"padding_oracle":       doPaddingOracle,
	"rsa_factor":           doRSAFactor,
}

// ---------------------------------------------------------------------------
// Shared decode/encode helpers.
// ---------------------------------------------------------------------------

func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return kerrors.Wrap(kerrors.InputFormat, "decode arguments", err)
	}
	return nil
}

func decodeB64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.InputFormat, "invalid base64", err)
	}
	return b, nil
}

func decodePoly(s string) (gf128.Poly, error) { return gf128.ParsePoly(s) }

func decodeCoeffs(arr []string, poly gf128.Poly) ([]gf128.Element, error) {
	out := make([]gf128.Element, len(arr))
	for i, s := range arr {
		e, err := gf128.FromBase64(s, poly)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeGFPoly(arr []string, poly gf128.Poly) (gfpoly.GFPoly, error) {
	coeffs, err := decodeCoeffs(arr, poly)
	if err != nil {
		return gfpoly.GFPoly{}, err
	}
	return gfpoly.New(coeffs, poly)
}

// parseBigIntArg decodes a JSON value that may be a bare integer or a
// string literal (optionally "0x"/"0o"/"0b"-prefixed) into a *big.Int,
// mirroring Python's int(s, 0) used by the original calc/rsa_factor
// actions.
func parseBigIntArg(raw json.RawMessage) (*big.Int, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == 0 {
		return nil, kerrors.New(kerrors.InputFormat, "missing integer argument")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, kerrors.Wrap(kerrors.InputFormat, "decode integer string", err)
		}
		n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
		if !ok {
			return nil, kerrors.Newf(kerrors.InputFormat, "invalid integer literal %q", s)
		}
		return n, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, kerrors.Newf(kerrors.InputFormat, "invalid integer literal %q", trimmed)
	}
	return n, nil
}

// formatAnswer renders n as a JSON number when it fits in a signed 32-bit
// int, else as a signed, "0x"-prefixed lowercase hex string (mirroring
// Python's hex() on a negative operand).
func formatAnswer(n *big.Int) any {
	if n.Cmp(big.NewInt(math.MinInt32)) >= 0 && n.Cmp(big.NewInt(math.MaxInt32)) <= 0 {
		return n.Int64()
	}
	neg := n.Sign() < 0
	abs := new(big.Int).Abs(n)
	hex := "0x" + abs.Text(16)
	if neg {
		hex = "-" + hex
	}
	return hex
}

func newSource(seed *int64) gfpolyfactor.Source {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewSource(s))
}

// ---------------------------------------------------------------------------
// calc
// ---------------------------------------------------------------------------

func doCalc(args json.RawMessage) (map[string]any, error) {
	var a struct {
		LHS json.RawMessage `json:"lhs"`
		RHS json.RawMessage `json:"rhs"`
		Op  string          `json:"op"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	lhs, err := parseBigIntArg(a.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := parseBigIntArg(a.RHS)
	if err != nil {
		return nil, err
	}

	var result big.Int
	switch a.Op {
	case "+":
		result.Add(lhs, rhs)
	case "-":
		result.Sub(lhs, rhs)
	case "*":
		result.Mul(lhs, rhs)
	case "/":
		if rhs.Sign() == 0 {
			return nil, kerrors.New(kerrors.Domain, "division by zero")
		}
		result.Quo(lhs, rhs) // Quo truncates toward zero, matching spec's calc semantics.
	default:
		return nil, kerrors.Newf(kerrors.InputFormat, "unknown calc operator %q", a.Op)
	}
	return map[string]any{"answer": formatAnswer(&result)}, nil
}

// ---------------------------------------------------------------------------
// gf_* raw field-element actions
// ---------------------------------------------------------------------------

func doGFMul(args json.RawMessage) (map[string]any, error) {
	var a struct{ A, B, Poly string }
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	x, err := gf128.FromBase64(a.A, poly)
	if err != nil {
		return nil, err
	}
	y, err := gf128.FromBase64(a.B, poly)
	if err != nil {
		return nil, err
	}
	z, err := gf128.Mul(x, y)
	if err != nil {
		return nil, err
	}
	return map[string]any{"y": z.Base64()}, nil
}

func doGFDivmod(args json.RawMessage) (map[string]any, error) {
	var a struct{ A, B string }
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	x, err := gf128.FromBase64(a.A, gf128.P1)
	if err != nil {
		return nil, err
	}
	y, err := gf128.FromBase64(a.B, gf128.P1)
	if err != nil {
		return nil, err
	}
	q, r, err := gf128.DivModRaw(x, y)
	if err != nil {
		return nil, err
	}
	return map[string]any{"q": q.Base64(), "r": r.Base64()}, nil
}

func doGFInv(args json.RawMessage) (map[string]any, error) {
	var a struct{ X, Poly string }
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	x, err := gf128.FromBase64(a.X, poly)
	if err != nil {
		return nil, err
	}
	y, err := gf128.Inv(x)
	if err != nil {
		return nil, err
	}
	return map[string]any{"y": y.Base64()}, nil
}

func doGFDiv(args json.RawMessage) (map[string]any, error) {
	var a struct{ A, B, Poly string }
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	x, err := gf128.FromBase64(a.A, poly)
	if err != nil {
		return nil, err
	}
	y, err := gf128.FromBase64(a.B, poly)
	if err != nil {
		return nil, err
	}
	q, err := gf128.Div(x, y)
	if err != nil {
		return nil, err
	}
	return map[string]any{"q": q.Base64()}, nil
}

func doGFPow(args json.RawMessage) (map[string]any, error) {
	var a struct {
		B    string          `json:"b"`
		E    json.RawMessage `json:"e"`
		Poly string          `json:"poly"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	base, err := gf128.FromBase64(a.B, poly)
	if err != nil {
		return nil, err
	}
	e, err := parseBigIntArg(a.E)
	if err != nil {
		return nil, err
	}
	if e.Sign() < 0 {
		return nil, kerrors.New(kerrors.Domain, "exponent must be non-negative")
	}
	y := gf128.Pow(base, e)
	return map[string]any{"y": y.Base64()}, nil
}

func doGFSqrt(args json.RawMessage) (map[string]any, error) {
	var a struct{ X, Poly string }
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	x, err := gf128.FromBase64(a.X, poly)
	if err != nil {
		return nil, err
	}
	y := gf128.Sqrt(x)
	return map[string]any{"y": y.Base64()}, nil
}

// ---------------------------------------------------------------------------
// gcm_encrypt
// ---------------------------------------------------------------------------

func doGCMEncrypt(args json.RawMessage) (map[string]any, error) {
	var a struct{ Key, Nonce, Plaintext, AD, Poly string }
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	key, err := decodeB64(a.Key)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeB64(a.Nonce)
	if err != nil {
		return nil, err
	}
	pt, err := decodeB64(a.Plaintext)
	if err != nil {
		return nil, err
	}
	ad, err := decodeB64(a.AD)
	if err != nil {
		return nil, err
	}
	res, err := gcm.Encrypt(poly, key, nonce, pt, ad)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"ciphertext": res.CiphertextBase64(),
		"tag":        res.TagBase64(),
		"L":          res.LBase64(),
		"H":          res.HBase64(),
	}, nil
}

// ---------------------------------------------------------------------------
// gfpoly_* ring operations
// ---------------------------------------------------------------------------

func doGFPolyAdd(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A, B []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	pb, err := decodeGFPoly(a.B, poly)
	if err != nil {
		return nil, err
	}
	sum, err := gfpoly.Add(pa, pb)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": sum.ToBase64()}, nil
}

func doGFPolyMul(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A, B []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	pb, err := decodeGFPoly(a.B, poly)
	if err != nil {
		return nil, err
	}
	prod, err := gfpoly.Mul(pa, pb)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": prod.ToBase64()}, nil
}

func doGFPolyDivmod(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A, B []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	pb, err := decodeGFPoly(a.B, poly)
	if err != nil {
		return nil, err
	}
	q, r, err := gfpoly.DivMod(pa, pb)
	if err != nil {
		return nil, err
	}
	return map[string]any{"q": q.ToBase64(), "r": r.ToBase64()}, nil
}

func doGFPolyGcd(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A, B []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	pb, err := decodeGFPoly(a.B, poly)
	if err != nil {
		return nil, err
	}
	g, err := gfpoly.Gcd(pa, pb)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": g.ToBase64()}, nil
}

func doGFPolyMonic(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A    []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	m, err := pa.Monic()
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": m.ToBase64()}, nil
}

func doGFPolyPow(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A    []string
		E    json.RawMessage
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	e, err := parseBigIntArg(a.E)
	if err != nil {
		return nil, err
	}
	if e.Sign() < 0 {
		return nil, kerrors.New(kerrors.Domain, "exponent must be non-negative")
	}
	res, err := gfpoly.Pow(pa, e)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": res.ToBase64()}, nil
}

func doGFPolyPowmod(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A, M []string
		E    json.RawMessage
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	pm, err := decodeGFPoly(a.M, poly)
	if err != nil {
		return nil, err
	}
	e, err := parseBigIntArg(a.E)
	if err != nil {
		return nil, err
	}
	if e.Sign() < 0 {
		return nil, kerrors.New(kerrors.Domain, "exponent must be non-negative")
	}
	res, err := gfpoly.PowMod(pa, e, pm)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": res.ToBase64()}, nil
}

func doGFPolyDiff(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A    []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	d, err := pa.Diff()
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": d.ToBase64()}, nil
}

func doGFPolySqrt(args json.RawMessage) (map[string]any, error) {
	var a struct {
		A    []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	pa, err := decodeGFPoly(a.A, poly)
	if err != nil {
		return nil, err
	}
	r, err := pa.Sqrt()
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": r.ToBase64()}, nil
}

func doGFPolySort(args json.RawMessage) (map[string]any, error) {
	var a struct {
		Polys [][]string `json:"polys"`
		Poly  string     `json:"poly"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	parsed := make([]gfpoly.GFPoly, len(a.Polys))
	for i, arr := range a.Polys {
		p, err := decodeGFPoly(arr, poly)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
	}
	sortGFPolys(parsed)
	out := make([][]string, len(parsed))
	for i, p := range parsed {
		out[i] = p.ToBase64()
	}
	return map[string]any{"sorted": out}, nil
}

func sortGFPolys(ps []gfpoly.GFPoly) {
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && ps[j].Less(ps[j-1]); j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
}

// ---------------------------------------------------------------------------
// gfpoly_factor_*
// ---------------------------------------------------------------------------

func doGFPolyFactorSFF(args json.RawMessage) (map[string]any, error) {
	var a struct {
		F    []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	f, err := decodeGFPoly(a.F, poly)
	if err != nil {
		return nil, err
	}
	factors, err := gfpolyfactor.SFF(f)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(factors))
	for i, sf := range factors {
		out[i] = map[string]any{"factor": sf.Factor.ToBase64(), "exponent": sf.Exponent}
	}
	return map[string]any{"factors": out}, nil
}

func doGFPolyFactorDDF(args json.RawMessage) (map[string]any, error) {
	var a struct {
		F    []string
		Poly string
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	f, err := decodeGFPoly(a.F, poly)
	if err != nil {
		return nil, err
	}
	factors, err := gfpolyfactor.DDF(f)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(factors))
	for i, df := range factors {
		out[i] = map[string]any{"factor": df.Factor.ToBase64(), "degree": df.Degree}
	}
	return map[string]any{"factors": out}, nil
}

func doGFPolyFactorEDF(args json.RawMessage) (map[string]any, error) {
	var a struct {
		F    []string
		D    int
		Poly string
		Seed *int64 `json:"seed"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}
	f, err := decodeGFPoly(a.F, poly)
	if err != nil {
		return nil, err
	}
	factors, err := gfpolyfactor.EDF(f, a.D, newSource(a.Seed))
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(factors))
	for i, ff := range factors {
		out[i] = ff.ToBase64()
	}
	return map[string]any{"factors": out}, nil
}

// ---------------------------------------------------------------------------
// gcm_crack
// ---------------------------------------------------------------------------

type gcmCrackMessage struct {
	AssociatedData string `json:"associated_data"`
	Ciphertext     string `json:"ciphertext"`
	Tag            string `json:"tag"`
}

func doGCMCrack(args json.RawMessage) (map[string]any, error) {
	var a struct {
		M1, M2, M3 gcmCrackMessage
		Forgery    struct {
			AssociatedData string `json:"associated_data"`
			Ciphertext     string `json:"ciphertext"`
		}
		Poly string
		Seed *int64 `json:"seed"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	poly, err := decodePoly(a.Poly)
	if err != nil {
		return nil, err
	}

	toMessage := func(m gcmCrackMessage) (gcmcrack.Message, error) {
		ad, err := decodeB64(m.AssociatedData)
		if err != nil {
			return gcmcrack.Message{}, err
		}
		ct, err := decodeB64(m.Ciphertext)
		if err != nil {
			return gcmcrack.Message{}, err
		}
		tagBytes, err := decodeB64(m.Tag)
		if err != nil {
			return gcmcrack.Message{}, err
		}
		if len(tagBytes) != 16 {
			return gcmcrack.Message{}, kerrors.Newf(kerrors.InputFormat, "tag must be 16 bytes, got %d", len(tagBytes))
		}
		var tag [16]byte
		copy(tag[:], tagBytes)
		return gcmcrack.Message{AD: ad, Ciphertext: ct, Tag: tag}, nil
	}

	m1, err := toMessage(a.M1)
	if err != nil {
		return nil, err
	}
	m2, err := toMessage(a.M2)
	if err != nil {
		return nil, err
	}
	m3, err := toMessage(a.M3)
	if err != nil {
		return nil, err
	}
	forgeryAD, err := decodeB64(a.Forgery.AssociatedData)
	if err != nil {
		return nil, err
	}
	forgeryCT, err := decodeB64(a.Forgery.Ciphertext)
	if err != nil {
		return nil, err
	}

	res, err := gcmcrack.Crack(poly, m1, m2, m3, forgeryAD, forgeryCT, newSource(a.Seed))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"H":    res.H.Base64(),
		"mask": res.Mask.Base64(),
		"tag":  base64.StdEncoding.EncodeToString(res.Tag[:]),
	}, nil
}

// ---------------------------------------------------------------------------
// padding_oracle
// ---------------------------------------------------------------------------

func doPaddingOracle(args json.RawMessage) (map[string]any, error) {
	var a struct {
		Hostname   string `json:"hostname"`
		Port       int    `json:"port"`
		KeyID      uint16 `json:"key_id"`
		IV         string `json:"iv"`
		Ciphertext string `json:"ciphertext"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	iv, err := decodeB64(a.IV)
	if err != nil {
		return nil, err
	}
	ct, err := decodeB64(a.Ciphertext)
	if err != nil {
		return nil, err
	}

	logger.Info("starting padding oracle attack", "hostname", a.Hostname, "port", a.Port, "blocks", len(ct)/16)
	plaintext, err := paddingoracle.Attack(a.Hostname, a.Port, a.KeyID, iv, ct)
	if err != nil {
		return nil, err
	}
	return map[string]any{"plaintext": base64.StdEncoding.EncodeToString(plaintext)}, nil
}

// ---------------------------------------------------------------------------
// rsa_factor
// ---------------------------------------------------------------------------

func doRSAFactor(args json.RawMessage) (map[string]any, error) {
	var a struct {
		Moduli []json.RawMessage `json:"moduli"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	moduli := make([]*big.Int, len(a.Moduli))
	for i, raw := range a.Moduli {
		n, err := parseBigIntArg(raw)
		if err != nil {
			return nil, err
		}
		moduli[i] = n
	}
	factored, err := batchgcd.Factor(moduli)
	if err != nil {
		return nil, err
	}
	out := make([][2]any, len(factored))
	for i, f := range factored {
		out[i] = [2]any{formatAnswer(f.P), formatAnswer(f.Q)}
	}
	return map[string]any{"factored_moduli": out}, nil
}
