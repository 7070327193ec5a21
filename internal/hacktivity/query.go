package hacktivity

// Query is the fixed GraphQL document sent on every fetch. The $since
// variable narrows results to reports disclosed after the window start;
// ordering by latest disclosable activity keeps the response chronological.
const Query = `query($since: DateTime) {
  hacktivity_items(
    secure_order_by: {
      field: latest_disclosable_activity_at,
      direction: ASC
    },
    where: {
      report: {
        disclosed_at: {
          _gt: $since
        }
      }
    }
  ) {
    nodes {
      ... on Disclosed {
        __typename
        severity_rating
        currency
        total_awarded_amount
        report {
          _id
          url
          title
          substate
          disclosed_at
        }
        team {
          url
          name
          profile_picture(size: large)
        }
        reporter {
          name
          username
          url
          profile_picture(size: large)
        }
      }
    }
  }
}`
