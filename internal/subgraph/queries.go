package subgraph

const tickFields = `tickIdx feeGrowthOutside0X128 feeGrowthOutside1X128`

const tokenFields = `id symbol decimals derivedETH`

const poolFields = `
    id
    tick
    sqrtPrice
    liquidity
    feeTier
    feeGrowthGlobal0X128
    feeGrowthGlobal1X128
    token0 { ` + tokenFields + ` }
    token1 { ` + tokenFields + ` }`

const positionFields = `
    id
    owner
    pool { id }
    liquidity
    feeGrowthInside0LastX128
    feeGrowthInside1LastX128
    tickLower { ` + tickFields + ` }
    tickUpper { ` + tickFields + ` }`

const snapshotFields = `
    position { id }
    timestamp
    liquidity
    feeGrowthInside0LastX128
    feeGrowthInside1LastX128`

const positionQuery = `query position($id: String!) {
  position(id: $id) {` + positionFields + `
  }
}`

const positionSnapshotsQuery = `query positionSnapshots($id: String!, $first: Int!, $skip: Int!) {
  positionSnapshots(first: $first, skip: $skip, where: {position: $id}, orderBy: timestamp, orderDirection: asc) {` + snapshotFields + `
  }
}`

const ownerPositionsQuery = `query ownerPositions($owner: String!, $pool: String!, $first: Int!, $skip: Int!) {
  positions(first: $first, skip: $skip, where: {owner: $owner, pool: $pool}, orderBy: id, orderDirection: asc) {` + positionFields + `
  }
}`

const ownerSnapshotsQuery = `query ownerSnapshots($owner: String!, $pool: String!, $first: Int!, $skip: Int!) {
  positionSnapshots(first: $first, skip: $skip, where: {owner: $owner, pool: $pool}, orderBy: timestamp, orderDirection: asc) {` + snapshotFields + `
  }
}`

const poolDaysQuery = `query poolDays($pool: String!, $after: Int!, $first: Int!) {
  poolDayDatas(first: $first, where: {pool: $pool, date_gt: $after}, orderBy: date, orderDirection: asc) {
    date
    tick
    feeGrowthGlobal0X128
    feeGrowthGlobal1X128
  }
}`

const tickDaysQuery = `query tickDays($tick: String!, $after: Int!, $first: Int!) {
  tickDayDatas(first: $first, where: {tick: $tick, date_gt: $after}, orderBy: date, orderDirection: asc) {
    date
    tick { tickIdx }
    feeGrowthOutside0X128
    feeGrowthOutside1X128
  }
}`

const tickBeforeQuery = `query tickBefore($tick: String!, $floor: Int!) {
  tickDayDatas(first: 1, where: {tick: $tick, date_lte: $floor}, orderBy: date, orderDirection: desc) {
    date
    tick { tickIdx }
    feeGrowthOutside0X128
    feeGrowthOutside1X128
  }
}`

const poolStateQuery = `query poolState($pool: String!) {
  pool(id: $pool) {` + poolFields + `
  }
}`

// The range boundaries resolve to the nearest initialized ticks inside the requested range.
const rangeHistoryQuery = `query rangeHistory($pool: String!, $tickLower: Int!, $tickUpper: Int!, $block: Int!) {
  bundle(id: "1") { ethPriceUSD }
  pool(id: $pool) {` + poolFields + `
  }
  tickLower: ticks(first: 1, where: {poolAddress: $pool, tickIdx_gte: $tickLower}, orderBy: tickIdx, orderDirection: asc) { ` + tickFields + ` }
  tickUpper: ticks(first: 1, where: {poolAddress: $pool, tickIdx_lte: $tickUpper}, orderBy: tickIdx, orderDirection: desc) { ` + tickFields + ` }
  poolPast: pool(id: $pool, block: {number: $block}) {` + poolFields + `
  }
  tickLowerPast: ticks(first: 1, where: {poolAddress: $pool, tickIdx_gte: $tickLower}, orderBy: tickIdx, orderDirection: asc, block: {number: $block}) { ` + tickFields + ` }
  tickUpperPast: ticks(first: 1, where: {poolAddress: $pool, tickIdx_lte: $tickUpper}, orderBy: tickIdx, orderDirection: desc, block: {number: $block}) { ` + tickFields + ` }
  _meta { block { number } }
}`

const latestBlockQuery = `query latestBlock {
  _meta { block { number } }
}`

const blockAtQuery = `query blockAt($timestamp: Int!) {
  blocks(first: 1, where: {timestamp_gte: $timestamp}, orderBy: number, orderDirection: asc) {
    number
  }
}`
