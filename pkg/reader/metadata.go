// pkg/reader/metadata.go
package reader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/internal/utils/binary"
)

// MetadataProgramID is the Metaplex token metadata program.
var MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

const metadataTTL = 5 * time.Minute

// TokenMetadata is the on-chain Metaplex metadata for a mint. Name, Symbol
// and URI have their trailing NUL padding stripped.
type TokenMetadata struct {
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	Name            string
	Symbol          string
	URI             string
	UpdatedAt       time.Time
}

// DeriveMetadataAddress returns the metadata PDA for a mint: seeds
// ["metadata", program, mint] under the metadata program. Deterministic.
func DeriveMetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			MetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		MetadataProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return addr, nil
}

// DecodeTokenMetadata parses the leading fields of a Metaplex metadata
// account: key, update authority, mint, then the three borsh strings. The
// creator list and edition data that follow are not read.
func DecodeTokenMetadata(data []byte) (*TokenMetadata, error) {
	rd := binary.NewReader(data)

	if err := rd.Skip(1); err != nil { // metadata key tag
		return nil, newDecodeError("", "metadata key", err)
	}

	metadata := &TokenMetadata{}
	var err error
	if metadata.UpdateAuthority, err = rd.PubKey(); err != nil {
		return nil, newDecodeError("", "update authority", err)
	}
	if metadata.Mint, err = rd.PubKey(); err != nil {
		return nil, newDecodeError("", "mint", err)
	}
	if metadata.Name, err = rd.BorshString(); err != nil {
		return nil, newDecodeError("", "name", err)
	}
	if metadata.Symbol, err = rd.BorshString(); err != nil {
		return nil, newDecodeError("", "symbol", err)
	}
	if metadata.URI, err = rd.BorshString(); err != nil {
		return nil, newDecodeError("", "uri", err)
	}

	// Metaplex pads the strings to fixed capacity with NULs.
	metadata.Name = strings.TrimRight(metadata.Name, "\x00")
	metadata.Symbol = strings.TrimRight(metadata.Symbol, "\x00")
	metadata.URI = strings.TrimRight(metadata.URI, "\x00")
	return metadata, nil
}

// GetTokenMetadata fetches and decodes the Metaplex metadata for a mint.
func (r *Reader) GetTokenMetadata(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	addr, err := DeriveMetadataAddress(mint)
	if err != nil {
		return nil, err
	}

	info, err := r.client.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata account for %s: %w", mint.String(), err)
	}

	metadata, err := DecodeTokenMetadata(info.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", mint.String(), err)
	}
	metadata.UpdatedAt = time.Now()

	r.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.String("symbol", metadata.Symbol),
		zap.String("name", metadata.Name))
	return metadata, nil
}

// MetadataCache caches token metadata per mint with a TTL. Metadata rarely
// changes, so a short cache removes most repeat lookups in monitoring loops.
type MetadataCache struct {
	cache  sync.Map
	reader *Reader
	logger *zap.Logger
}

// NewMetadataCache builds a cache over the reader.
func NewMetadataCache(reader *Reader, logger *zap.Logger) *MetadataCache {
	return &MetadataCache{
		reader: reader,
		logger: logger.Named("metadata-cache"),
	}
}

// Get returns cached metadata when fresh, otherwise fetches and stores it.
func (c *MetadataCache) Get(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	if value, ok := c.cache.Load(mint.String()); ok {
		metadata := value.(*TokenMetadata)
		if time.Since(metadata.UpdatedAt) < metadataTTL {
			c.logger.Debug("token metadata retrieved from cache",
				zap.String("mint", mint.String()),
				zap.String("symbol", metadata.Symbol))
			return metadata, nil
		}
	}

	metadata, err := c.reader.GetTokenMetadata(ctx, mint)
	if err != nil {
		return nil, err
	}
	c.cache.Store(mint.String(), metadata)
	return metadata, nil
}
