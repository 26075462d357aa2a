package solrpc

import (
	"context"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

type TokenSender struct {
	rpcClient *rpc.Client
	wallet    solana.PrivateKey
	mint      solana.PublicKey
	logger    *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (ITokenSender, error) {
	wallet, err := solana.PrivateKeyFromBase58(appConfig.Solana.WalletPrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid treasury wallet private key")
	}

	mint, err := solana.PublicKeyFromBase58(appConfig.Solana.VPCMintAddr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid VPC mint address")
	}

	return &TokenSender{
		rpcClient: rpc.New(appConfig.Solana.RPCEndpoint),
		wallet:    wallet,
		mint:      mint,
		logger:    logger,
	}, nil
}

func (s *TokenSender) SendVPC(ctx context.Context, destination string, amount decimal.Decimal) (string, error) {
	destPubkey, err := solana.PublicKeyFromBase58(destination)
	if err != nil {
		return "", errors.Wrapf(err, "invalid destination address %s", destination)
	}

	mintAccount, err := s.rpcClient.GetAccountInfo(ctx, s.mint)
	if err != nil {
		return "", errors.Wrap(err, "failed to get mint account")
	}

	var mintData token.Mint
	if err := bin.NewBinDecoder(mintAccount.Value.Data.GetBinary()).Decode(&mintData); err != nil {
		return "", errors.Wrap(err, "failed to decode mint data")
	}

	sourceATA, _, err := solana.FindAssociatedTokenAddress(s.wallet.PublicKey(), s.mint)
	if err != nil {
		return "", errors.Wrap(err, "failed to derive source token account")
	}

	destinationATA, _, err := solana.FindAssociatedTokenAddress(destPubkey, s.mint)
	if err != nil {
		return "", errors.Wrap(err, "failed to derive destination token account")
	}

	destAccount, err := s.rpcClient.GetAccountInfo(ctx, destinationATA)
	if err != nil || destAccount == nil || destAccount.Value == nil {
		return "", errors.Errorf("destination token account does not exist for %s", destination)
	}

	units := amount.Shift(int32(mintData.Decimals)).BigInt()
	if !units.IsUint64() {
		return "", errors.Errorf("amount %s out of range", amount)
	}

	transferIx, err := token.NewTransferCheckedInstructionBuilder().
		SetAmount(units.Uint64()).
		SetDecimals(mintData.Decimals).
		SetSourceAccount(sourceATA).
		SetMintAccount(s.mint).
		SetDestinationAccount(destinationATA).
		SetOwnerAccount(s.wallet.PublicKey()).
		ValidateAndBuild()
	if err != nil {
		return "", errors.Wrap(err, "failed to build transfer instruction")
	}

	latestBlockhash, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", errors.Wrap(err, "failed to get latest blockhash")
	}

	tx, err := solana.NewTransactionBuilder().
		AddInstruction(transferIx).
		SetRecentBlockHash(latestBlockhash.Value.Blockhash).
		SetFeePayer(s.wallet.PublicKey()).
		Build()
	if err != nil {
		return "", errors.Wrap(err, "failed to build transaction")
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.wallet.PublicKey()) {
			return &s.wallet
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := s.rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return "", errors.Wrap(err, "failed to send transaction")
	}

	return sig.String(), nil
}
