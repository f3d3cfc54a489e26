// Package yoki declares the entities indexed from the Yoki Origins ERC-1155
// contract on Astar. Each entity is an immutable record of one event.
package yoki

import (
	subgraph "github.com/AstarNetwork/yoki2-subgraph"
)

type AdminChanged struct {
	ID              subgraph.Bytes  `graphql:"id"`
	PreviousAdmin   subgraph.Bytes  `graphql:"previousAdmin"`
	NewAdmin        subgraph.Bytes  `graphql:"newAdmin"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type ApprovalForAll struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Account         subgraph.Bytes  `graphql:"account"`
	Operator        subgraph.Bytes  `graphql:"operator"`
	Approved        bool            `graphql:"approved"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type ContractURIUpdated struct {
	ID              subgraph.Bytes  `graphql:"id"`
	PrevURI         string          `graphql:"prevURI"`
	NewURI          string          `graphql:"newURI"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type Initialized struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Version         int32           `graphql:"version"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type Paused struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Account         subgraph.Bytes  `graphql:"account"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type RoleAdminChanged struct {
	ID                subgraph.Bytes  `graphql:"id"`
	Role              subgraph.Bytes  `graphql:"role"`
	PreviousAdminRole subgraph.Bytes  `graphql:"previousAdminRole"`
	NewAdminRole      subgraph.Bytes  `graphql:"newAdminRole"`
	BlockNumber       subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp    subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash   subgraph.Bytes  `graphql:"transactionHash"`
}

type RoleGranted struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Role            subgraph.Bytes  `graphql:"role"`
	Account         subgraph.Bytes  `graphql:"account"`
	Sender          subgraph.Bytes  `graphql:"sender"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type RoleRevoked struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Role            subgraph.Bytes  `graphql:"role"`
	Account         subgraph.Bytes  `graphql:"account"`
	Sender          subgraph.Bytes  `graphql:"sender"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

// TransferBatch is an ERC-1155 batch transfer. Ids and Values pair up by index.
type TransferBatch struct {
	ID              subgraph.Bytes    `graphql:"id"`
	Operator        subgraph.Bytes    `graphql:"operator"`
	From            subgraph.Bytes    `graphql:"from"`
	To              subgraph.Bytes    `graphql:"to"`
	Ids             []subgraph.BigInt `graphql:"ids"`
	Values          []subgraph.BigInt `graphql:"values"`
	BlockNumber     subgraph.BigInt   `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt   `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes    `graphql:"transactionHash"`
}

// TransferSingle is an ERC-1155 single transfer. The event's token id is
// stored as internal_id since id is the entity key.
type TransferSingle struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Operator        subgraph.Bytes  `graphql:"operator"`
	From            subgraph.Bytes  `graphql:"from"`
	To              subgraph.Bytes  `graphql:"to"`
	InternalID      subgraph.BigInt `graphql:"internal_id"`
	Value           subgraph.BigInt `graphql:"value"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type URI struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Value           string          `graphql:"value"`
	InternalID      subgraph.BigInt `graphql:"internal_id"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type Unpaused struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Account         subgraph.Bytes  `graphql:"account"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}

type Upgraded struct {
	ID              subgraph.Bytes  `graphql:"id"`
	Implementation  subgraph.Bytes  `graphql:"implementation"`
	BlockNumber     subgraph.BigInt `graphql:"blockNumber"`
	BlockTimestamp  subgraph.BigInt `graphql:"blockTimestamp"`
	TransactionHash subgraph.Bytes  `graphql:"transactionHash"`
}
