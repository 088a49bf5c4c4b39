package saleor

const transactionEventReportMutation = `mutation TransactionEventReport(
  $id: ID!
  $amount: PositiveDecimal!
  $availableActions: [TransactionActionEnum!]!
  $externalUrl: String!
  $message: String
  $pspReference: String!
  $time: DateTime!
  $type: TransactionEventTypeEnum!
) {
  transactionEventReport(
    id: $id
    amount: $amount
    availableActions: $availableActions
    externalUrl: $externalUrl
    message: $message
    pspReference: $pspReference
    time: $time
    type: $type
  ) {
    alreadyProcessed
    errors {
      field
      message
      code
    }
  }
}`

const fetchAppIDQuery = `query FetchAppId {
  app {
    id
  }
}`

const fetchChannelsQuery = `query FetchChannels {
  channels {
    id
    name
    slug
    currencyCode
  }
}`

const fetchPrivateMetadataQuery = `query FetchAppPrivateMetadata {
  app {
    id
    privateMetadata {
      key
      value
    }
  }
}`

const updatePrivateMetadataMutation = `mutation UpdateAppPrivateMetadata($id: ID!, $input: [MetadataInput!]!) {
  updatePrivateMetadata(id: $id, input: $input) {
    errors {
      message
    }
  }
}`

const deletePrivateMetadataMutation = `mutation DeleteAppPrivateMetadata($id: ID!, $keys: [String!]!) {
  deletePrivateMetadata(id: $id, keys: $keys) {
    errors {
      message
    }
  }
}`
