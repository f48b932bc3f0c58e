package tx

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/rlp"
)

// DAOTx is the signed envelope broadcast to the chain. Payload holds the
// JSON encoding of the typed tx matching Type; the envelope itself travels
// rlp-encoded.
type DAOTx struct {
	Version uint8
	Type    DAOTxType
	Nonce   uint64
	Sender  string
	Payload []byte
	Sig     [][]byte
}

func NewDAOTx(t DAOTxType, nonce uint64, sender string, inner any) (*DAOTx, error) {
	payload, err := json.Marshal(inner)
	if err != nil {
		return nil, err
	}
	return &DAOTx{
		Version: DAOTxVersion1,
		Type:    t,
		Nonce:   nonce,
		Sender:  sender,
		Payload: payload,
	}, nil
}

// SigData returns the byte string signatures commit to: the envelope with
// Sig replaced by the chain id.
func (btx *DAOTx) SigData(ext []byte) ([]byte, error) {
	ntx := *btx
	ntx.Sig = [][]byte{ext}
	return json.Marshal(ntx)
}

func Marshal(btx *DAOTx) ([]byte, error) {
	return rlp.EncodeToBytes(btx)
}

func Unmarshal(dat []byte) (*DAOTx, error) {
	btx := new(DAOTx)
	if err := rlp.DecodeBytes(dat, btx); err != nil {
		return nil, ErrInvalidTx
	}
	return btx, nil
}

func unmarshalInner[T any](btx *DAOTx) (*T, error) {
	inner := new(T)
	if err := json.Unmarshal(btx.Payload, inner); err != nil {
		return nil, ErrInvalidTx
	}
	return inner, nil
}

// Inner decodes the typed payload carried by the envelope.
func Inner(btx *DAOTx) (any, error) {
	switch btx.Type {
	case DAOTxTypeDeploy:
		return unmarshalInner[DeployTx](btx)
	case DAOTxTypeVote:
		return unmarshalInner[VoteTx](btx)
	case DAOTxTypeContribute:
		return unmarshalInner[ContributeTx](btx)
	case DAOTxTypeRefund:
		return unmarshalInner[RefundTx](btx)
	default:
		return nil, ErrUnsupportedTxType
	}
}
